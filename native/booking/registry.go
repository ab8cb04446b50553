package booking

// User is the data model from spec §3: an identity that may own items.
// OwnedItems only ever grows (spec: "never shrinks").
type User struct {
	ID         uint64
	OwnedItems []uint64
}

// Arbitrator is a holder of a non-transferable credential permitted to cast
// dispute votes. Revoked arbitrators keep their past votes (spec §9
// supplemented feature: revocation is evaluated at call time, not
// retroactively) but may no longer cast new ones.
type Arbitrator struct {
	ID      uint64
	Revoked bool
}

// ProofKind identifies which credential kind a Proof claims to present. The
// engine treats a proof as trusted only if it presents the expected kind
// (spec §4.4), mirroring the teacher's non_fungible proof checks in
// booking_system.rs's get_user_data/checked_proof pattern — generalized here
// to a plain, already-verified capability struct. Verifying the wire
// encoding (the JWT) is the auth package's job; this package only enforces
// the authorization rules once a Proof has been constructed.
type ProofKind uint8

const (
	ProofKindUser ProofKind = iota
	ProofKindReservation
	ProofKindArbitrator
	ProofKindAdmin
)

// Proof is an opaque capability handle: an unforgeable reference, already
// verified by the auth package, asserting that the bearer legitimately holds
// a credential of Kind identifying Subject (and, for reservation
// credentials, the specific Resource it authorizes).
type Proof struct {
	Kind     ProofKind
	Subject  uint64
	Resource uint64
}

// userRegistry issues user identities.
type userRegistry struct {
	lastID uint64
	users  map[uint64]*User
}

func newUserRegistry() *userRegistry {
	return &userRegistry{users: make(map[uint64]*User)}
}

func (r *userRegistry) newUser() *User {
	r.lastID++
	u := &User{ID: r.lastID}
	r.users[u.ID] = u
	return u
}

func (r *userRegistry) get(id uint64) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, ErrInvalidCredential
	}
	return u, nil
}

// arbitratorRegistry issues and revokes arbitrator credentials.
type arbitratorRegistry struct {
	lastID      uint64
	arbitrators map[uint64]*Arbitrator
}

func newArbitratorRegistry() *arbitratorRegistry {
	return &arbitratorRegistry{arbitrators: make(map[uint64]*Arbitrator)}
}

func (r *arbitratorRegistry) issue() *Arbitrator {
	r.lastID++
	a := &Arbitrator{ID: r.lastID}
	r.arbitrators[a.ID] = a
	return a
}

func (r *arbitratorRegistry) revoke(id uint64) error {
	a, ok := r.arbitrators[id]
	if !ok {
		return ErrArbitratorNotFound
	}
	a.Revoked = true
	return nil
}

func (r *arbitratorRegistry) active(id uint64) bool {
	a, ok := r.arbitrators[id]
	return ok && !a.Revoked
}
