package pgc

import (
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/gtank/merlin"
)

const (
	INNER_PRODUCT_DOMAIN_TAG = "pgc-inner-product"
	TRANSFER_DOMAIN_TAG      = "pgc-aggregated-transfer"
	BURN_DOMAIN_TAG          = "pgc-burn"
	RANGE_PROOF_DOMAIN_TAG   = "pgc-range-proof"
	PEDERSEN_DOMAIN_TAG      = "pgc-pedersen-value-base"
	IPA_POINT_DOMAIN_TAG     = "pgc-inner-product-u"
	PROOF_DIGEST_DOMAIN_TAG  = "pgc-proof-digest"
)

func InitialTranscript(label string) *merlin.Transcript {
	return merlin.NewTranscript(label)
}

func RangeproofDomainSep(n int64, m int64, t *merlin.Transcript) *merlin.Transcript {
	appendBytes([]byte("dom-sep"), []byte("rangeproof v1"), t)

	appendInt64("n", uint64(n), t)
	appendInt64("m", uint64(m), t)
	return t
}

func InnerproductDomainSep(n uint64, t *merlin.Transcript) {
	appendBytes([]byte("dom-sep"), []byte("ipp v1"), t)
	appendInt64("n", n, t)
}

func appendInt64(label string, i uint64, t *merlin.Transcript) {
	appendBytes([]byte(label), uint64Bytes(i), t)
}

func appendBytes(field, data []byte, t *merlin.Transcript) {
	t.AppendMessage(field, data)
}

// ChallengeScalar extracts 64 bytes and reduces them modulo the group order.
func ChallengeScalar(label string, t *merlin.Transcript) *fr.Element {
	data := t.ExtractBytes([]byte(label), 64)
	return fromBytesModOrderWide(data)
}

func AppendScalar(label string, s *fr.Element, t *merlin.Transcript) {
	appendBytes([]byte(label), s.Marshal(), t)
}

func AppendPoint(label string, p *bn254.G1Affine, t *merlin.Transcript) {
	appendBytes([]byte(label), p.Marshal(), t)
}
