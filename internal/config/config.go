// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/alvinbaena/pwd-strength/internal/util"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every variable, HIBP_TIMEOUT is read from
// PWDSTRENGTH_HIBP_TIMEOUT.
const EnvPrefix = "PWDSTRENGTH"

type Config struct {
	HibpURL     string        `mapstructure:"HIBP_URL" validate:"required,url"`
	HibpTimeout time.Duration `mapstructure:"HIBP_TIMEOUT" validate:"gt=0"`
	HibpRetries int           `mapstructure:"HIBP_RETRIES" validate:"min=0,max=10"`
	HibpPadding bool          `mapstructure:"HIBP_PADDING"`
	UserAgent   string        `mapstructure:"USER_AGENT" validate:"required"`
	CacheTTL    time.Duration `mapstructure:"CACHE_TTL" validate:"min=0"`

	BreachCheck    bool `mapstructure:"BREACH_CHECK"`
	BreachRequired bool `mapstructure:"BREACH_REQUIRED"`

	AuditEnabled    bool   `mapstructure:"AUDIT_ENABLED"`
	AuditFile       string `mapstructure:"AUDIT_FILE" validate:"required_if=AuditEnabled true"`
	AuditKey        string `mapstructure:"AUDIT_KEY"`
	AuditMaxSizeMB  int    `mapstructure:"AUDIT_MAX_SIZE_MB" validate:"min=1"`
	AuditMaxBackups int    `mapstructure:"AUDIT_MAX_BACKUPS" validate:"min=0"`
	AuditMaxAgeDays int    `mapstructure:"AUDIT_MAX_AGE_DAYS" validate:"min=0"`
	AuditCompress   bool   `mapstructure:"AUDIT_COMPRESS"`

	Port  uint16 `mapstructure:"PORT" validate:"required"`
	Debug bool   `mapstructure:"DEBUG"`
}

var defaults = map[string]interface{}{
	"HIBP_URL":           "https://api.pwnedpasswords.com/range/",
	"HIBP_TIMEOUT":       "5s",
	"HIBP_RETRIES":       2,
	"HIBP_PADDING":       true,
	"USER_AGENT":         "pwd-strength/1.0",
	"CACHE_TTL":          "10m",
	"BREACH_CHECK":       true,
	"BREACH_REQUIRED":    false,
	"AUDIT_ENABLED":      true,
	"AUDIT_FILE":         "pwd-strength-audit.log",
	"AUDIT_MAX_SIZE_MB":  10,
	"AUDIT_MAX_BACKUPS":  3,
	"AUDIT_MAX_AGE_DAYS": 28,
	"AUDIT_COMPRESS":     false,
	"PORT":               3100,
	"DEBUG":              false,
}

func bindEnvs(v *viper.Viper, iface interface{}, parts ...string) {
	ifv := reflect.ValueOf(iface)
	ift := reflect.TypeOf(iface)
	for i := 0; i < ift.NumField(); i++ {
		fv := ifv.Field(i)
		t := ift.Field(i)
		tv, ok := t.Tag.Lookup("mapstructure")
		if !ok {
			continue
		}
		switch fv.Kind() {
		case reflect.Struct:
			bindEnvs(v, fv.Interface(), append(parts, tv)...)
		default:
			_ = v.BindEnv(strings.Join(append(parts, tv), "."))
		}
	}
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "required_if":
		return fmt.Sprintf("This field is required if %s", util.ToScreamingSnakeCase(fe.Param()))
	case "url":
		return "This field must be a valid URL"
	case "gt":
		return fmt.Sprintf("This field must be greater than %s", fe.Param())
	case "min":
		return fmt.Sprintf("This field must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("This field must be at most %s", fe.Param())
	}
	return fe.Error() // default error
}

// Load reads the configuration from the environment, after loading any of
// dotenvFiles that exist (".env" when none are given).
func Load(dotenvFiles ...string) (config Config, err error) {
	if err = loadDotenvIfPresent(dotenvFiles...); err != nil {
		return
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// This is to not require a config file to unmarshal Envs in a struct
	// https://github.com/spf13/viper/issues/188#issuecomment-399884438
	config = Config{}
	bindEnvs(v, config)

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("error reading configuration: %w", err)
	}

	err = Validate(config)
	return
}

// Validate checks c and renders every failure as "FIELD: message".
func Validate(c Config) error {
	validate := validator.New()
	if err := validate.Struct(&c); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			var msgs []string
			for _, fe := range ve {
				msgs = append(msgs, fmt.Sprintf("%s: %s", util.ToScreamingSnakeCase(fe.Field()), msgForTag(fe)))
			}

			return errors.New(strings.Join(msgs, ". "))
		}

		return fmt.Errorf("error validating configuration: %w", err)
	}

	return nil
}

func loadDotenvIfPresent(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, path := range paths {
		_, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("stat dotenv file failed path=%s: %w", path, err)
		}

		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load dotenv file failed path=%s: %w", path, err)
		}
	}

	return nil
}
