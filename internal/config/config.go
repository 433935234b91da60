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

const envPrefix = "CALENDAR_"

type Application struct {
	Calendar Calendar `koanf:"calendar"`
	Server   Server   `koanf:"server"`
	Export   Export   `koanf:"export"`
	Log      Log      `koanf:"log"`
}

// Calendar describes the calendar the registry starts with.
type Calendar struct {
	Name     string `koanf:"name"`
	Timezone string `koanf:"timezone"`
	// AutoDecline makes every created or imported event fail on a conflict, not only the
	// ones created with --autoDecline.
	AutoDecline bool `koanf:"autodecline"`
}

type Server struct {
	Addr string `koanf:"addr"`
}

type Export struct {
	Dir string `koanf:"dir"`
}

type Log struct {
	Level string `koanf:"level"`
}

func Defaults() Application {
	return Application{
		Calendar: Calendar{
			Name:     "Default",
			Timezone: "America/New_York",
		},
		Server: Server{
			Addr: ":8181",
		},
		Export: Export{
			Dir: ".",
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load layers the defaults, the YAML file at path and CALENDAR_* environment variables. A
// missing file is not an error.
func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if os.IsNotExist(err) {
				log.Debugf("Config file not found at %s, using defaults and environment variables", path)
			} else {
				log.Errorf("error loading config from YAML: %v", err)
				return Application{}, err
			}
		} else {
			log.Debugf("Loaded configuration from file: %s", path)
		}
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			// CALENDAR_SERVER_ADDR -> server.addr
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
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
