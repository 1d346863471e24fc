package di

import (
	"reflect"
	"strconv"

	"github.com/google/uuid"
)

// Service identifies something a registration can satisfy. Implementations
// must be comparable: they are used as map keys.
type Service interface {
	Description() string
}

// ServiceWithType is a Service bound to a Go type.
type ServiceWithType interface {
	Service

	// ServiceType is the type instances of the service have.
	ServiceType() reflect.Type

	// ChangeType returns the same kind of service for another type.
	ChangeType(t reflect.Type) Service
}

// TypedService keys a component by Go type.
type TypedService struct{ Type reflect.Type }

// TypeOf returns the TypedService for T.
func TypeOf[T any]() TypedService { return TypedService{Type: reflect.TypeFor[T]()} }

// Description implements Service.
func (s TypedService) Description() string { return s.Type.String() }

// ServiceType implements ServiceWithType.
func (s TypedService) ServiceType() reflect.Type { return s.Type }

// ChangeType implements ServiceWithType.
func (s TypedService) ChangeType(t reflect.Type) Service { return TypedService{Type: t} }

// KeyedService keys a component by a string key and a Go type.
type KeyedService struct {
	Key  string
	Type reflect.Type
}

// Keyed returns the KeyedService for key and T.
func Keyed[T any](key string) KeyedService {
	return KeyedService{Key: key, Type: reflect.TypeFor[T]()}
}

// Description implements Service.
func (s KeyedService) Description() string {
	// Example: *app.Greeter keyed "english"
	return s.Type.String() + " keyed " + strconv.Quote(s.Key)
}

// ServiceType implements ServiceWithType.
func (s KeyedService) ServiceType() reflect.Type { return s.Type }

// ChangeType implements ServiceWithType.
func (s KeyedService) ChangeType(t reflect.Type) Service { return KeyedService{Key: s.Key, Type: t} }

// UniqueService is a service nobody else can name. It is used to reach one
// particular registration.
type UniqueService struct{ ID uuid.UUID }

// NewUniqueService returns a service with a fresh random id.
func NewUniqueService() UniqueService { return UniqueService{ID: uuid.New()} }

// Description implements Service.
func (s UniqueService) Description() string { return "unique " + s.ID.String() }

func collectionElement(svc Service) (Service, bool) {
	swt, ok := svc.(ServiceWithType)
	if !ok || swt.ServiceType() == nil || swt.ServiceType().Kind() != reflect.Slice {
		return nil, false
	}
	return swt.ChangeType(swt.ServiceType().Elem()), true
}
