package record

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainRecord is the hash domain for record fingerprints.
// The version suffix allows the algorithm to change later.
const DomainRecord = "smartinvoice/record/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator keeps domain and data from running together.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns a stable content hash of rec.
//
// Strings are NFC-normalized before hashing, so two records that differ only
// in Unicode composition share a fingerprint. Sync code can compare
// fingerprints to decide whether a local invoice changed since upload.
func Fingerprint(rec Record) (string, error) {
	data, err := MarshalNormalized(rec)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hashWithDomain(DomainRecord, data), nil
}
