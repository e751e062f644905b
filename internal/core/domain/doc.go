// Package domain contains the core business entities and errors for the
// corpus pipeline. It has no dependencies on infrastructure or adapters.
package domain
