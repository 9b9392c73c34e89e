package email

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark/frontend"

	"github.com/Cosmos-Harry/zk-vault/pkg/poseidon"
)

// Assignment is the fully populated witness for one email proof.
type Assignment struct {
	DomainHash frontend.Variable `gnark:"domainHash,public"`
	Commitment frontend.Variable `gnark:"commitment,public"`

	EmailHash frontend.Variable `gnark:"emailHash"`
	DkimHash  frontend.Variable `gnark:"dkimHash"`
	Nonce     frontend.Variable `gnark:"nonce"`
}

func (a *Assignment) Define(api frontend.API) error {
	s := Shape{DomainHash: a.DomainHash, Commitment: a.Commitment, EmailHash: a.EmailHash, DkimHash: a.DkimHash, Nonce: a.Nonce}
	return s.Define(api)
}

// HashField reduces a byte slice mod the scalar field via SHA-256, the
// encoding used for email_hash, domain_hash, and dkim_hash throughout this
// circuit.
func HashField(b []byte) *big.Int {
	digest := sha256.Sum256(b)
	return poseidon.BytesToField(digest[:])
}

// EncodeEmail reduces the lowercased email address.
func EncodeEmail(emailAddress string) *big.Int {
	return HashField([]byte(strings.ToLower(emailAddress)))
}

// EncodeDomain reduces the lowercased domain.
func EncodeDomain(domain string) *big.Int {
	return HashField([]byte(strings.ToLower(domain)))
}

// NewNonce draws 32 fresh secure-random bytes and reduces them mod r,
// providing unlinkability across proofs for the same email/domain.
func NewNonce() (*big.Int, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("email: generate nonce: %w", err)
	}
	return poseidon.BytesToField(buf), nil
}

// Prepare builds an Assignment from already-resolved field values.
func Prepare(emailAddress, domain string, dkimBindingData []byte, nonce *big.Int) *Assignment {
	emailHash := EncodeEmail(emailAddress)
	domainHash := EncodeDomain(domain)
	dkimHash := HashField(dkimBindingData)
	commitment := poseidon.HashMany([]*big.Int{emailHash, domainHash, dkimHash, nonce})

	return &Assignment{
		DomainHash: domainHash,
		Commitment: commitment,
		EmailHash:  emailHash,
		DkimHash:   dkimHash,
		Nonce:      nonce,
	}
}
