package contract

import (
	"reflect"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// ObjectTypeIdentity is the canonical identity of the empty interface. It is
// used whenever a contract carries no type identity so untyped exports and
// untyped imports still line up.
const ObjectTypeIdentity = "any"

// Identity identifies a service of the composition model.
//
// Two identities are equal iff both fields match; Identity is comparable and
// can be used directly as a map key or as a host-model service.
type Identity struct {
	ContractName string
	TypeIdentity string
}

// NewIdentity builds an Identity. An empty typeIdentity is replaced with
// ObjectTypeIdentity; an empty contractName is rejected.
func NewIdentity(contractName, typeIdentity string) (Identity, error) {
	if contractName == "" {
		return Identity{}, ArgumentError{Name: "contractName", Reason: "must not be empty"}
	}
	if typeIdentity == "" {
		typeIdentity = ObjectTypeIdentity
	}
	return Identity{ContractName: contractName, TypeIdentity: typeIdentity}, nil
}

// MustIdentity is NewIdentity for known-good input. It panics on error.
func MustIdentity(contractName, typeIdentity string) Identity {
	id, err := NewIdentity(contractName, typeIdentity)
	if err != nil {
		panic(err)
	}
	return id
}

// IdentityFor returns the identity the composition model assigns to T.
func IdentityFor[T any]() Identity {
	t := reflect.TypeFor[T]()
	return Identity{ContractName: ContractName(t), TypeIdentity: TypeIdentity(t)}
}

// Description implements the host model's Service interface.
func (id Identity) Description() string {
	return "contract " + strconv.Quote(id.ContractName)
}

// String returns "name (typeIdentity)".
func (id Identity) String() string {
	return id.ContractName + " (" + id.TypeIdentity + ")"
}

// Hash returns a hash consistent with ==.
func (id Identity) Hash() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(id.ContractName)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(id.TypeIdentity)
	return d.Sum64()
}
