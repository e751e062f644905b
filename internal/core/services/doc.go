// Package services contains the core orchestration logic: ingestion,
// retrieval and answer generation. Services depend only on ports,
// never on concrete adapters.
package services
