// Package config defines runtime configuration for trustscan: defaults,
// validation, XDG directory helpers, and the optional .trustscan YAML
// file with named analysis profiles.
package config
