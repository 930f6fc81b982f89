package pgc

import (
	"github.com/dchest/blake2b"
)

// ProofDigest identifies an encoded proof in the consumed proof set.
func ProofDigest(kind string, encoded []byte) []byte {
	hash := blake2b.New256()
	hash.Write([]byte(PROOF_DIGEST_DOMAIN_TAG))
	hash.Write([]byte(kind))
	hash.Write(encoded)
	return hash.Sum(nil)
}
