package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Host          string        `koanf:"host"`
	Database      Database      `koanf:"db"`
	Notifications Notifications `koanf:"notifications"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

// Notifications holds the alert derivation thresholds. The defaults are part
// of the product contract (5 expenses over 7 days marks a category as
// frequent, top-ups surface for 2 days) and should only be changed deliberately.
type Notifications struct {
	FrequentThreshold  int `koanf:"frequentthreshold"`
	FrequentWindowDays int `koanf:"frequentwindowdays"`
	TopupLookbackDays  int `koanf:"topuplookbackdays"`
	CacheTTLSeconds    int `koanf:"cachettlseconds"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Host: "http://localhost:3000",
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "hisabi",
			Pass:   "",
			Name:   "hisabi",
			Schema: "hisabi",
		},
		Notifications: Notifications{
			FrequentThreshold:  5,
			FrequentWindowDays: 7,
			TopupLookbackDays:  2,
			CacheTTLSeconds:    30,
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "HISABI_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "HISABI_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
