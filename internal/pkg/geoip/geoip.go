// Package geoip resolves click origins from public IP addresses. The
// lookup is synchronous and in-process; no network calls are made.
package geoip

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"

	"github.com/ds124wfegd/shortlink/internal/pkg/classify"
)

type Location struct {
	Country string
	City    string
}

type Resolver interface {
	Resolve(ip string) Location
	Close() error
}

// MaxMindResolver resolves locations from a local MaxMind mmdb file.
type MaxMindResolver struct {
	reader *geoip2.Reader
}

func NewMaxMindResolver(dbPath string) (*MaxMindResolver, error) {
	reader, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database: %w", err)
	}
	return &MaxMindResolver{reader: reader}, nil
}

func (r *MaxMindResolver) Resolve(ip string) Location {
	if classify.IsPrivateIP(ip) {
		return Location{Country: classify.LocalValue, City: classify.LocalValue}
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Location{Country: classify.UnknownValue, City: classify.UnknownValue}
	}

	record, err := r.reader.City(parsed)
	if err != nil {
		return Location{Country: classify.UnknownValue, City: classify.UnknownValue}
	}

	loc := Location{Country: classify.UnknownValue, City: classify.UnknownValue}
	if name := record.Country.Names["en"]; name != "" {
		loc.Country = name
	}
	if name := record.City.Names["en"]; name != "" {
		loc.City = name
	}
	return loc
}

func (r *MaxMindResolver) Close() error {
	return r.reader.Close()
}

// NoopResolver is used when no geoip database is configured. Private
// addresses still resolve to the local sentinel so the worker output
// stays consistent.
type NoopResolver struct{}

func NewNoopResolver() *NoopResolver {
	return &NoopResolver{}
}

func (r *NoopResolver) Resolve(ip string) Location {
	if classify.IsPrivateIP(ip) {
		return Location{Country: classify.LocalValue, City: classify.LocalValue}
	}
	return Location{Country: classify.UnknownValue, City: classify.UnknownValue}
}

func (r *NoopResolver) Close() error {
	return nil
}
