package confidential

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/tuneinsight/lattigo/v4/bfv"
	"github.com/tuneinsight/lattigo/v4/rlwe"
)

// Plaintext modulus: ~2^45.8, NTT-friendly (≡ 1 mod 2^14). Keeps headroom
// for the 10000x-scaled repayment product of amounts up to 1e9 at rates up
// to 10000 bps (peaks near 2e13).
const plaintextModulus = 0x200000440001

// rateScale converts basis points into a fraction: owed = amount + amount*rate/rateScale.
const rateScale = 10_000

func newParameters() (bfv.Parameters, error) {
	return bfv.NewParametersFromLiteral(bfv.ParametersLiteral{
		LogN: 13,
		LogQ: []int{54, 54, 54},
		LogP: []int{55},
		T:    plaintextModulus,
	})
}

// Keeper owns the BFV key material and is the only component that can
// decrypt. Plaintext leaves the keeper solely through the ACL-gated
// Reveal/RepaymentAmount paths; the compare operations disclose ordering,
// never values.
type Keeper struct {
	params    bfv.Parameters
	encoder   bfv.Encoder
	encryptor rlwe.Encryptor
	decryptor rlwe.Decryptor
	evaluator bfv.Evaluator
	auth      Authorizer
}

// NewKeeperFromFile loads the secret key at path, generating and persisting
// a fresh one on first boot. An empty path means an ephemeral key.
func NewKeeperFromFile(path string, auth Authorizer) (*Keeper, error) {
	params, err := newParameters()
	if err != nil {
		return nil, err
	}
	sk, err := loadOrGenerateKey(params, path)
	if err != nil {
		return nil, err
	}
	kgen := bfv.NewKeyGenerator(params)
	return &Keeper{
		params:    params,
		encoder:   bfv.NewEncoder(params),
		encryptor: bfv.NewEncryptor(params, kgen.GenPublicKey(sk)),
		decryptor: bfv.NewDecryptor(params, sk),
		evaluator: bfv.NewEvaluator(params, rlwe.EvaluationKey{Rlk: kgen.GenRelinearizationKey(sk, 1)}),
		auth:      auth,
	}, nil
}

func loadOrGenerateKey(params bfv.Parameters, path string) (*rlwe.SecretKey, error) {
	if path == "" {
		return bfv.NewKeyGenerator(params).GenSecretKey(), nil
	}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		sk := bfv.NewKeyGenerator(params).GenSecretKey()
		data, merr := sk.MarshalBinary()
		if merr != nil {
			return nil, merr
		}
		if werr := os.WriteFile(path, data, 0o600); werr != nil {
			return nil, werr
		}
		return sk, nil
	case err != nil:
		return nil, err
	}
	sk := rlwe.NewSecretKey(params.Parameters)
	if err := sk.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("keeper key %s: %w", path, err)
	}
	return sk, nil
}

// Encrypt seals value under the given field identity.
func (k *Keeper) Encrypt(field FieldID, value uint64) (*Ciphertext, error) {
	if value >= k.params.T() {
		return nil, ErrValueTooLarge
	}
	return &Ciphertext{Field: field, ct: k.encryptor.EncryptNew(k.encodePlain(value))}, nil
}

// Add returns a+b without decrypting either operand. The result stays bound
// to a's field.
func (k *Keeper) Add(a, b *Ciphertext) *Ciphertext {
	return &Ciphertext{Field: a.Field, ct: k.evaluator.AddNew(a.ct, b.ct)}
}

func (k *Keeper) Sub(a, b *Ciphertext) *Ciphertext {
	return &Ciphertext{Field: a.Field, ct: k.evaluator.SubNew(a.ct, b.ct)}
}

func (k *Keeper) AddPlain(a *Ciphertext, delta uint64) *Ciphertext {
	return &Ciphertext{Field: a.Field, ct: k.evaluator.AddNew(a.ct, k.encodePlain(delta))}
}

func (k *Keeper) SubPlain(a *Ciphertext, delta uint64) *Ciphertext {
	return &Ciphertext{Field: a.Field, ct: k.evaluator.SubNew(a.ct, k.encodePlain(delta))}
}

// Compare reports the ordering of the sealed value against bound: -1, 0 or
// +1. Decryption happens inside the keeper; only the sign escapes.
func (k *Keeper) Compare(a *Ciphertext, bound uint64) int {
	return cmp(k.decrypt(a.ct), bound)
}

// CompareCipher orders two sealed values without disclosing either.
func (k *Keeper) CompareCipher(a, b *Ciphertext) int {
	return cmp(k.decrypt(a.ct), k.decrypt(b.ct))
}

// Reveal releases the plaintext to viewer if the ACL allows it.
func (k *Keeper) Reveal(ctx context.Context, a *Ciphertext, viewer string) (uint64, error) {
	if err := k.authorize(ctx, a.Field, viewer); err != nil {
		return 0, err
	}
	return k.decrypt(a.ct), nil
}

// RepaymentAmount releases amount + amount*rate/10000 (floor division) to a
// viewer granted on both source fields. The total is assembled
// homomorphically at a 10000x scale, so only the single gated decrypt at
// the end touches plaintext.
func (k *Keeper) RepaymentAmount(ctx context.Context, amount, rate *Ciphertext, viewer string) (uint64, error) {
	if err := k.authorize(ctx, amount.Field, viewer); err != nil {
		return 0, err
	}
	if err := k.authorize(ctx, rate.Field, viewer); err != nil {
		return 0, err
	}
	return k.owed(amount, rate), nil
}

// CompareRepayment orders paid against the amount owed without disclosing
// the owed total.
func (k *Keeper) CompareRepayment(paid uint64, amount, rate *Ciphertext) int {
	return cmp(paid, k.owed(amount, rate))
}

func (k *Keeper) owed(amount, rate *Ciphertext) uint64 {
	scaled := k.evaluator.MulNew(amount.ct, k.encodePlain(rateScale))
	interest := k.evaluator.RelinearizeNew(k.evaluator.MulNew(amount.ct, rate.ct))
	return k.decrypt(k.evaluator.AddNew(scaled, interest)) / rateScale
}

func (k *Keeper) authorize(ctx context.Context, field FieldID, viewer string) error {
	ok, err := k.auth.IsGranted(ctx, field, viewer)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthorized
	}
	return nil
}

func (k *Keeper) decrypt(ct *rlwe.Ciphertext) uint64 {
	return k.encoder.DecodeUintNew(k.decryptor.DecryptNew(ct))[0]
}

func (k *Keeper) encodePlain(v uint64) *rlwe.Plaintext {
	pt := bfv.NewPlaintext(k.params, k.params.MaxLevel())
	k.encoder.Encode([]uint64{v}, pt)
	return pt
}

func cmp(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
