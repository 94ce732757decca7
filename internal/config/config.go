package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Host     string   `koanf:"host"`
	Listen   string   `koanf:"listen"`
	Frontend Frontend `koanf:"frontend"`
	Google   Google   `koanf:"google"`
	Session  Session  `koanf:"session"`
	Database Database `koanf:"db"`
	AI       AI       `koanf:"ai"`
	Storage  Storage  `koanf:"storage"`
	Calendar Calendar `koanf:"calendar"`
	Live     Live     `koanf:"live"`
}

type Frontend struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
}

type Google struct {
	ClientId     string `koanf:"clientid"`
	ClientSecret string `koanf:"clientsecret"`
}

type Session struct {
	CookieName string        `koanf:"cookiename"`
	TTL        time.Duration `koanf:"ttl"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

// AI configures the OpenAI-compatible completion endpoint used by the assistant.
type AI struct {
	BaseURL     string        `koanf:"baseurl"`
	APIKey      string        `koanf:"apikey"`
	Model       string        `koanf:"model"`
	Temperature float64       `koanf:"temperature"`
	MaxTokens   int           `koanf:"maxtokens"`
	Timeout     time.Duration `koanf:"timeout"`
}

type Storage struct {
	Dir       string `koanf:"dir"`
	PublicURL string `koanf:"publicurl"`
	MaxBytes  int64  `koanf:"maxbytes"`
}

type Calendar struct {
	// HorizonMonths is how far past the requested date occurrences are expanded when the caller
	// does not give an explicit end of the window.
	HorizonMonths  int `koanf:"horizonmonths"`
	MaxOccurrences int `koanf:"maxoccurrences"`
	// CountWeekdayOccurrences makes weekly rules with explicit days honour Count.
	CountWeekdayOccurrences bool `koanf:"countweekdayoccurrences"`
	// CountFromSeriesStart numbers occurrences from the template start instead of the window.
	CountFromSeriesStart bool `koanf:"countfromseriesstart"`
	// WeekFirstDay is used when the user has no preference stored (0 = Sunday).
	WeekFirstDay int `koanf:"weekfirstday"`
}

type Live struct {
	RolloverCron string `koanf:"rollovercron"`
}

func Defaults() Application {
	return Application{
		Host:   "http://localhost:3000",
		Listen: ":8181",
		Frontend: Frontend{
			Enabled: true,
			Dir:     "frontend",
		},
		Session: Session{
			CookieName: "aetas_session",
			TTL:        30 * 24 * time.Hour,
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "aetas",
			Pass:   "",
			Name:   "aetas",
			Schema: "aetas",
		},
		AI: AI{
			BaseURL:     "https://api.groq.com/openai/v1",
			Model:       "llama3-70b-8192",
			Temperature: 0.7,
			MaxTokens:   2048,
			Timeout:     30 * time.Second,
		},
		Storage: Storage{
			Dir:       "storage/media",
			PublicURL: "http://localhost:8181/media",
			MaxBytes:  10 << 20,
		},
		Calendar: Calendar{
			HorizonMonths:  3,
			MaxOccurrences: 5000,
			WeekFirstDay:   0,
		},
		Live: Live{
			RolloverCron: "0 0 * * *",
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
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
		Prefix: "AETAS_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "AETAS_")), "_", ".")
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
