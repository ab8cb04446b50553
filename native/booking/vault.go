package booking

import "fmt"

// Bucket is a linear token of value: a non-negative amount of one currency
// that must be deposited, taken from, or returned on every code path. It is
// the concrete stand-in for the spec's "scoped acquisition with guaranteed
// disposition" described in §4.1.
type Bucket struct {
	Currency string
	Amount   Decimal
}

// NewBucket constructs a bucket. Amount must be non-negative; callers at the
// RPC boundary are expected to validate external input before it reaches the
// engine.
func NewBucket(currency string, amount Decimal) Bucket {
	return Bucket{Currency: currency, Amount: amount}
}

// IsZero reports whether the bucket carries no value.
func (b Bucket) IsZero() bool { return b.Amount.IsZero() }

// Vault holds a non-negative balance of a single declared currency on behalf
// of one reservation, grounded in the teacher's per-escrow Vault fields in
// native/escrow (there backed by the ledger's native Vault primitive; here a
// plain balance since token custody is explicitly out of scope per spec §1).
type Vault struct {
	currency string
	balance  Decimal
}

// NewVault creates an empty vault declared for the given currency.
func NewVault(currency string) *Vault {
	return &Vault{currency: currency, balance: ZeroDecimal()}
}

// newVaultWithBalance reconstructs a vault at a known balance, used when
// restoring a Reservation's escrow from a persisted EngineSnapshot rather
// than accumulating it through Deposit.
func newVaultWithBalance(currency string, balance Decimal) *Vault {
	return &Vault{currency: currency, balance: balance}
}

// Currency reports the vault's declared currency.
func (v *Vault) Currency() string { return v.currency }

// Amount reports the current balance.
func (v *Vault) Amount() Decimal { return v.balance }

// Deposit adds a bucket's value to the vault. The bucket's currency must
// match the vault's declared currency.
func (v *Vault) Deposit(b Bucket) error {
	if b.Currency != v.currency {
		return fmt.Errorf("%w: vault is %s, bucket is %s", ErrWrongCurrency, v.currency, b.Currency)
	}
	v.balance = v.balance.Add(b.Amount)
	return nil
}

// Take removes amount from the vault and returns it as a bucket. It fails
// with ErrInsufficientFunds when amount exceeds the balance, and
// ErrBadArgument when amount is negative.
func (v *Vault) Take(amount Decimal) (Bucket, error) {
	if amount.IsNegative() {
		return Bucket{}, fmt.Errorf("%w: take amount must be non-negative", ErrBadArgument)
	}
	if amount.Cmp(v.balance) > 0 {
		return Bucket{}, fmt.Errorf("%w: requested %s, available %s", ErrInsufficientFunds, amount, v.balance)
	}
	v.balance = v.balance.Sub(amount)
	return NewBucket(v.currency, amount), nil
}

// TakeAll drains the entire balance into a bucket.
func (v *Vault) TakeAll() Bucket {
	out := NewBucket(v.currency, v.balance)
	v.balance = ZeroDecimal()
	return out
}
