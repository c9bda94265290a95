// Package normalize enriches imported appointments with structured addresses
// and validated national IDs obtained from an external completion model.
//
// Enrichment is best effort: a failing collaborator leaves the record as it
// was and the batch carries on.
package normalize

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/coletadomiciliar/backoffice/internal/entities"
)

var errEmptyResult = errors.New("normalizer returned no result")

// Completer returns the JSON object produced by a completion model.
type Completer interface {
	CompleteJSON(ctx context.Context, system, prompt string) (string, error)
}

// AddressNormalizer structures one free-text address.
type AddressNormalizer interface {
	NormalizeAddress(ctx context.Context, raw string) (*entities.NormalizedAddress, error)
}

// DocumentNormalizer extracts validated IDs from one free-text document field.
type DocumentNormalizer interface {
	NormalizeDocument(ctx context.Context, raw string) (*entities.NormalizedDocument, error)
}

// Stats counts normalization outcomes for a batch.
type Stats struct {
	AddressesNormalized int `json:"addresses_normalized"`
	AddressesFailed     int `json:"addresses_failed"`
	DocumentsNormalized int `json:"documents_normalized"`
	DocumentsFailed     int `json:"documents_failed"`
	// Failed lists the CandidateIDs of records with at least one failed stage.
	Failed []string `json:"failed,omitempty"`
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.AddressesNormalized += other.AddressesNormalized
	s.AddressesFailed += other.AddressesFailed
	s.DocumentsNormalized += other.DocumentsNormalized
	s.DocumentsFailed += other.DocumentsFailed
	s.Failed = append(s.Failed, other.Failed...)
}

// Attempted reports whether any normalization call was made.
func (s Stats) Attempted() bool {
	return s.AddressesNormalized+s.AddressesFailed+s.DocumentsNormalized+s.DocumentsFailed > 0
}

// Orchestrator runs the address and document normalizers over a batch, one
// record and one call at a time. Either normalizer may be nil.
type Orchestrator struct {
	addresses AddressNormalizer
	documents DocumentNormalizer
	logger    *zap.Logger
}

// NewOrchestrator creates a normalization orchestrator.
func NewOrchestrator(addresses AddressNormalizer, documents DocumentNormalizer, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{addresses: addresses, documents: documents, logger: logger}
}

// Normalize returns one record per input, in order. Records that were
// enriched are replaced by enriched copies; the rest are returned unchanged.
// It never fails: collaborator errors and panics are logged and counted.
func (o *Orchestrator) Normalize(ctx context.Context, records []*entities.Appointment) ([]*entities.Appointment, Stats) {
	var stats Stats
	out := make([]*entities.Appointment, len(records))

	for i, record := range records {
		normalized, recordStats := o.NormalizeRecord(ctx, record)
		out[i] = normalized
		stats.Add(recordStats)
	}

	if stats.Attempted() {
		o.logger.Info("normalization finished",
			zap.Int("records", len(records)),
			zap.Int("addresses_normalized", stats.AddressesNormalized),
			zap.Int("addresses_failed", stats.AddressesFailed),
			zap.Int("documents_normalized", stats.DocumentsNormalized),
			zap.Int("documents_failed", stats.DocumentsFailed),
		)
	}
	return out, stats
}

// NormalizeRecord enriches a single record.
func (o *Orchestrator) NormalizeRecord(ctx context.Context, record *entities.Appointment) (*entities.Appointment, Stats) {
	var stats Stats
	if record == nil {
		return nil, stats
	}
	current := record

	if o.addresses != nil && current.NeedsAddressNormalization() {
		addr, err := o.callAddress(ctx, current.RawAddress)
		if err != nil {
			stats.AddressesFailed++
			o.logFailure("address", current, err)
		} else {
			current = current.Clone()
			current.NormalizedAddress = addr
			if current.PostalCode == "" {
				current.PostalCode = addr.PostalCode
			}
			stats.AddressesNormalized++
		}
	}

	if o.documents != nil && current.NeedsDocumentNormalization() {
		doc, err := o.callDocument(ctx, current.RawDocuments)
		if err != nil {
			stats.DocumentsFailed++
			o.logFailure("document", current, err)
		} else {
			current = current.Clone()
			current.NormalizedDocument = doc
			current.PatientCPF = doc.CPF
			current.PatientRG = doc.RG
			stats.DocumentsNormalized++
		}
	}

	if stats.AddressesFailed+stats.DocumentsFailed > 0 {
		stats.Failed = []string{record.CandidateID}
	}
	return current, stats
}

func (o *Orchestrator) callAddress(ctx context.Context, raw string) (addr *entities.NormalizedAddress, err error) {
	defer func() {
		if r := recover(); r != nil {
			addr, err = nil, fmt.Errorf("address normalizer panicked: %v", r)
		}
	}()

	addr, err = o.addresses.NormalizeAddress(ctx, raw)
	if err == nil && addr == nil {
		err = errEmptyResult
	}
	return addr, err
}

func (o *Orchestrator) callDocument(ctx context.Context, raw string) (doc *entities.NormalizedDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("document normalizer panicked: %v", r)
		}
	}()

	doc, err = o.documents.NormalizeDocument(ctx, raw)
	if err == nil && doc == nil {
		err = errEmptyResult
	}
	return doc, err
}

func (o *Orchestrator) logFailure(kind string, record *entities.Appointment, err error) {
	o.logger.Warn("normalization failed",
		zap.String("kind", kind),
		zap.Uint("appointment_id", record.ID),
		zap.String("candidate_id", record.CandidateID),
		zap.Int("source_row", record.SourceRow),
		zap.Error(err),
	)
}
