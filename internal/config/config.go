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
	Server    Server      `koanf:"server"`
	Storage   Storage     `koanf:"storage"`
	Rules     Rules       `koanf:"rules"`
	Equipment []Equipment `koanf:"equipment"`
	Email     Email       `koanf:"email"`
}

type Server struct {
	Addr string `koanf:"addr"`
}

// Storage selects the booking store. Driver "file" keeps the whole collection
// in a single JSON document; "sqlite" and "postgres" use the SQL repository.
type Storage struct {
	Driver string `koanf:"driver"`
	Path   string `koanf:"path"`
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

// Rules is the operating-hours and booking-duration policy.
type Rules struct {
	OpeningHour        int      `koanf:"openinghour"`
	ClosingHour        int      `koanf:"closinghour"`
	OperatingDays      []string `koanf:"operatingdays"`
	MinDurationHours   float64  `koanf:"mindurationhours"`
	MaxDurationHours   float64  `koanf:"maxdurationhours"`
	SlotIncrementHours float64  `koanf:"slotincrementhours"`
}

type Equipment struct {
	ID               string  `koanf:"id"`
	Name             string  `koanf:"name"`
	Description      string  `koanf:"description"`
	Color            string  `koanf:"color"`
	MaxDurationHours float64 `koanf:"maxdurationhours"`
	Icon             string  `koanf:"icon"`
}

type Email struct {
	Enabled                bool   `koanf:"enabled"`
	BaseURL                string `koanf:"baseurl"`
	FacilitiesManagerEmail string `koanf:"facilitiesmanageremail"`
	FacilitiesManagerName  string `koanf:"facilitiesmanagername"`
}

func defaults() Application {
	return Application{
		Server: Server{
			Addr: ":8181",
		},
		Storage: Storage{
			Driver: "sqlite",
			Path:   "./fablab.db",
			Host:   "localhost",
			Port:   5432,
			User:   "fablab",
			Name:   "fablab",
			Schema: "fablab",
		},
		Rules: Rules{
			OpeningHour:        9,
			ClosingHour:        17,
			OperatingDays:      []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
			MinDurationHours:   0.5,
			MaxDurationHours:   4,
			SlotIncrementHours: 0.5,
		},
		Equipment: []Equipment{
			{ID: "ceramic_printer", Name: "Ceramic 3D Printer", Description: "Large format ceramic 3D printing", Color: "#FF6B6B", MaxDurationHours: 4, Icon: "🏺"},
			{ID: "laser_cutter", Name: "Laser Cutter", Description: "CO2 laser cutter for wood, acrylic, etc.", Color: "#4ECDC4", MaxDurationHours: 3, Icon: "⚡"},
			{ID: "cnc_router", Name: "CNC Router", Description: "3-axis CNC router for wood and soft metals", Color: "#95E1D3", MaxDurationHours: 4, Icon: "🔩"},
			{ID: "resin_printer", Name: "Resin 3D Printer", Description: "High-resolution resin printing", Color: "#F38181", MaxDurationHours: 8, Icon: "💧"},
			{ID: "vinyl_cutter", Name: "Vinyl Cutter", Description: "Large format vinyl cutting", Color: "#AA96DA", MaxDurationHours: 2, Icon: "✂️"},
			{ID: "embroidery", Name: "Embroidery Machine", Description: "Digital embroidery and textile work", Color: "#FCBAD3", MaxDurationHours: 3, Icon: "🧵"},
		},
		Email: Email{
			Enabled:                true,
			BaseURL:                "http://localhost:8300",
			FacilitiesManagerEmail: "carl@creativespark.ie",
			FacilitiesManagerName:  "Carl McAteer",
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(defaults(), "koanf"), nil)
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
		Prefix: "FABLAB_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "FABLAB_")), "_", ".")
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
