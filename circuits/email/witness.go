package email

import (
	"math/big"

	pkgemail "github.com/Cosmos-Harry/zk-vault/pkg/email"
)

// WitnessResult bundles the circuit assignment with the public values a
// caller typically wants for fixture export or logging.
type WitnessResult struct {
	Assignment Assignment
	DomainHash *big.Int
	Commitment *big.Int
}

// PrepareWitness validates the DKIM admission gate (auth_results must
// contain dkim=pass), then builds a full circuit witness binding domain,
// emailAddress, and the DKIM signature/auth-results data.
func PrepareWitness(emailAddress, domain, dkimSignature, authResults string) (*WitnessResult, error) {
	if err := pkgemail.VerifyAuthResults(authResults); err != nil {
		return nil, err
	}

	nonce, err := NewNonce()
	if err != nil {
		return nil, err
	}

	binding := pkgemail.BindingData(dkimSignature, authResults)
	assignment := Prepare(emailAddress, domain, binding, nonce)

	domainHash, _ := assignment.DomainHash.(*big.Int)
	commitment, _ := assignment.Commitment.(*big.Int)

	return &WitnessResult{
		Assignment: *assignment,
		DomainHash: domainHash,
		Commitment: commitment,
	}, nil
}
