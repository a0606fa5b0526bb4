package detection

import (
	"github.com/NeuralTrust/SiteGuard/pkg/domain/security"
	"github.com/sirupsen/logrus"
)

type Detector interface {
	// Scan tests every signature against the coerced value and returns one
	// hit per matching signature. label names the scanned input in logs.
	Scan(value interface{}, label string) []security.DetectionHit
}

type detector struct {
	logger     *logrus.Logger
	signatures *SignatureDatabase
}

func NewDetector(logger *logrus.Logger, signatures *SignatureDatabase) Detector {
	if signatures == nil {
		signatures = NewSignatureDatabase()
	}
	return &detector{
		logger:     logger,
		signatures: signatures,
	}
}

func (d *detector) Scan(value interface{}, label string) []security.DetectionHit {
	text, err := Coerce(value)
	if err != nil {
		d.logger.WithError(err).WithField("input", label).Warn("could not coerce input, scanning empty value")
		text = ""
	}
	if text == "" {
		return nil
	}

	var hits []security.DetectionHit
	for _, s := range d.signatures.signatures {
		if s.Pattern.MatchString(text) {
			hits = append(hits, security.DetectionHit{
				Category: s.Category,
				Pattern:  s.String(),
			})
		}
	}
	if len(hits) > 0 {
		d.logger.WithFields(logrus.Fields{
			"input": label,
			"hits":  len(hits),
		}).Debug("signatures matched")
	}
	return hits
}
