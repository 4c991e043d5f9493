package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/audioguide-discovery/internal/pkg/utils"
)

// DiscoverConfig configures the discovery CLI. Every flag can also be set
// through DISCOVER_<FLAG> with dashes turned into underscores.
type DiscoverConfig struct {
	APIURL      string
	HTTPTimeout time.Duration

	Latitude  *float64
	Longitude *float64
	IPGeo     bool
	IPGeoURL  string

	Near     string
	Tags     []string
	Sort     string
	Language string
	Cities   bool

	Play     string
	Out      string
	Prefs    string
	Wait     time.Duration
	LogLevel string
}

// DiscoverFlags declares the CLI flags.
func DiscoverFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("discover", pflag.ContinueOnError)
	fs.String("api", "http://localhost:3001", "guide backend base URL")
	fs.Duration("http-timeout", 15*time.Second, "timeout of each backend call")
	fs.Float64("lat", 0, "latitude of the static position")
	fs.Float64("lon", 0, "longitude of the static position")
	fs.Bool("ip-geo", false, "locate through the public IP address")
	fs.String("ip-geo-url", "http://ip-api.com", "IP geolocation service")
	fs.String("near", "", "search a place and browse around the first result")
	fs.StringSlice("tags", nil, "only show guides carrying all of these tags")
	fs.String("sort", "closest", "closest or popularity")
	fs.String("language", "", "display language, remembered for next time")
	fs.Bool("cities", false, "print the number of guides per city and exit")
	fs.String("play", "", "guide id to open and play")
	fs.String("out", "", "file receiving the played audio")
	fs.String("prefs", "", "preferences file")
	fs.Duration("wait", 30*time.Second, "how long to wait for playback to finish")
	fs.String("log-level", "warn", "log level")
	return fs
}

// LoadDiscover reads the parsed flags, falling back to the environment.
func LoadDiscover(flags *pflag.FlagSet) (*DiscoverConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("DISCOVER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("prefs", "DISCOVER_PREFS_PATH", "DISCOVER_PREFS"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	cfg := &DiscoverConfig{
		APIURL:      v.GetString("api"),
		HTTPTimeout: v.GetDuration("http-timeout"),
		IPGeo:       v.GetBool("ip-geo"),
		IPGeoURL:    v.GetString("ip-geo-url"),
		Near:        strings.TrimSpace(v.GetString("near")),
		Tags:        splitList(v.GetStringSlice("tags")),
		Sort:        strings.ToLower(v.GetString("sort")),
		Language:    strings.ToLower(strings.TrimSpace(v.GetString("language"))),
		Cities:      v.GetBool("cities"),
		Play:        strings.TrimSpace(v.GetString("play")),
		Out:         v.GetString("out"),
		Prefs:       v.GetString("prefs"),
		Wait:        v.GetDuration("wait"),
		LogLevel:    v.GetString("log-level"),
	}

	latSet, lonSet := v.IsSet("lat"), v.IsSet("lon")
	if latSet != lonSet {
		return nil, fmt.Errorf("--lat and --lon must be given together")
	}
	if latSet {
		lat, lon := v.GetFloat64("lat"), v.GetFloat64("lon")
		if !utils.ValidateCoordinates(lat, lon) {
			return nil, fmt.Errorf("coordinates %v,%v out of range", lat, lon)
		}
		cfg.Latitude, cfg.Longitude = &lat, &lon
	}

	switch cfg.Sort {
	case "closest", "popularity":
	default:
		return nil, fmt.Errorf("unknown sort %q: want closest or popularity", cfg.Sort)
	}
	if cfg.Language != "" {
		code, ok := utils.NormalizeLanguage(cfg.Language)
		if !ok {
			return nil, fmt.Errorf("unsupported language %q: want one of %s",
				cfg.Language, strings.Join(utils.SupportedLanguages, ", "))
		}
		cfg.Language = code
	}

	return cfg, nil
}

// splitList accepts both repeated flags and comma separated values.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
