package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kbukum/hurl/domain"
	apperrors "github.com/kbukum/hurl/errors"
	"github.com/kbukum/hurl/validation"
)

// Profile is a named set of request defaults.
//
//	profiles:
//	  staging:
//	    headers: ["Authorization: Bearer xyz"]
//	    retries: 2
//	    timeout: 10s
type Profile struct {
	Headers []string      `yaml:"headers" mapstructure:"headers"`
	Retries *int          `yaml:"retries" mapstructure:"retries"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ParsedHeaders parses every header line of the profile.
func (p Profile) ParsedHeaders() ([]domain.Header, error) {
	headers := make([]domain.Header, 0, len(p.Headers))
	for _, line := range p.Headers {
		h, err := domain.ParseHeader(line)
		if err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}
	return headers, nil
}

// Profiles maps profile names to profiles.
type Profiles map[string]Profile

// Get returns the named profile. Names match case-insensitively, since the
// config loader lower-cases map keys. Unknown names are INVALID_INPUT.
func (ps Profiles) Get(name string) (Profile, error) {
	if p, ok := ps[strings.ToLower(name)]; ok {
		return p, nil
	}
	for key, p := range ps {
		if strings.EqualFold(key, name) {
			return p, nil
		}
	}
	return Profile{}, apperrors.InvalidInput("profile", fmt.Sprintf("profile %q not found", name))
}

// Names returns the profile names in sorted order.
func (ps Profiles) Names() []string {
	names := make([]string, 0, len(ps))
	for name := range ps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks every profile's header lines and numeric settings.
func (ps Profiles) Validate() error {
	v := validation.New()
	for _, name := range ps.Names() {
		p := ps[name]
		field := "profiles." + name
		_, err := p.ParsedHeaders()
		v.Check(field+".headers", err)
		if p.Retries != nil {
			v.Min(field+".retries", *p.Retries, 0)
		}
		v.NonNegative(field+".timeout", p.Timeout)
	}
	return v.Err()
}
