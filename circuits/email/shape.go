// Package email implements the email/DKIM attestation circuit: proving
// knowledge of an email address and a DKIM-signature binding that hash to
// a public commitment over a publicly-known domain, without revealing the
// email address itself.
package email

import (
	"github.com/consensys/gnark/frontend"

	"github.com/Cosmos-Harry/zk-vault/pkg/poseidon"
)

// Shape is the compile-time circuit skeleton.
type Shape struct {
	DomainHash frontend.Variable `gnark:"domainHash,public"`
	Commitment frontend.Variable `gnark:"commitment,public"`

	EmailHash frontend.Variable `gnark:"emailHash"`
	DkimHash  frontend.Variable `gnark:"dkimHash"`
	Nonce     frontend.Variable `gnark:"nonce"`
}

// Define constrains hash_many([email_hash, domain_hash, dkim_hash, nonce])
// == commitment. domain_hash is public, so the verifier learns which
// domain was attested without learning the underlying email address.
func (s *Shape) Define(api frontend.API) error {
	g := poseidon.NewGadget(api)
	derived := g.HashMany([]frontend.Variable{s.EmailHash, s.DomainHash, s.DkimHash, s.Nonce})
	api.AssertIsEqual(derived, s.Commitment)
	return nil
}
