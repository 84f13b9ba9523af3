package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "ZENZERO_"

type Application struct {
	Host     string   `koanf:"host"`
	Port     int      `koanf:"port"`
	Storage  Storage  `koanf:"storage"`
	Database Database `koanf:"db"`
	Session  Session  `koanf:"session"`
	Advisor  Advisor  `koanf:"advisor"`
}

type StorageDriver string

const (
	PostgresStorage StorageDriver = "postgres"
	SQLiteStorage   StorageDriver = "sqlite"
	MemoryStorage   StorageDriver = "memory"
)

type Storage struct {
	Driver     StorageDriver `koanf:"driver"`
	SQLitePath string        `koanf:"sqlitepath"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type SessionStoreKind string

const (
	MemorySessions SessionStoreKind = "memory"
	RedisSessions  SessionStoreKind = "redis"
)

type Session struct {
	Store         SessionStoreKind `koanf:"store"`
	TTL           time.Duration    `koanf:"ttl"`
	RedisAddr     string           `koanf:"redisaddr"`
	RedisPassword string           `koanf:"redispassword"`
	RedisDB       int              `koanf:"redisdb"`
}

type Advisor struct {
	// Enabled switches between the Gemini client and the offline stub.
	Enabled   bool          `koanf:"enabled"`
	ApiKey    string        `koanf:"apikey"`
	BaseUrl   string        `koanf:"baseurl"`
	FastModel string        `koanf:"fastmodel"`
	ProModel  string        `koanf:"promodel"`
	Timeout   time.Duration `koanf:"timeout"`
}

func Defaults() Application {
	return Application{
		Host: "http://localhost:3000",
		Port: 8181,
		Storage: Storage{
			Driver:     SQLiteStorage,
			SQLitePath: "zenzero.db",
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "zenzero",
			Pass:   "",
			Name:   "zenzero",
			Schema: "zenzero",
		},
		Session: Session{
			Store:     MemorySessions,
			TTL:       30 * 24 * time.Hour,
			RedisAddr: "localhost:6379",
		},
		Advisor: Advisor{
			Enabled:   false,
			FastModel: "gemini-3-flash-preview",
			ProModel:  "gemini-3-pro-preview",
			Timeout:   30 * time.Second,
		},
	}
}

// Load layers the configuration: defaults, then the YAML file at path, then ZENZERO_*
// environment variables. Variables from dotEnvPath are exported first when the file exists.
func Load(path string, dotEnvPath string) (Application, error) {
	if err := godotenv.Load(dotEnvPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debugf("No %s file, using process environment only", dotEnvPath)
		} else {
			log.Errorf("error loading %s: %v", dotEnvPath, err)
			return Application{}, err
		}
	}

	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
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
