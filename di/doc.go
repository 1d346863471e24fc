// Package di is the type-keyed component model of compbridge.
//
// Components are described by Registrations: an activator, the Services it
// satisfies, a Sharing policy and a metadata bag. A Container stores them and
// resolves services on demand:
//
//	c := di.New()
//	_, _ = di.Provide(c, func(di.Context) (*Clock, error) { return &Clock{}, nil })
//	clock, err := di.Resolve[*Clock](c)
//
// Services are comparable values. TypedService keys by Go type, KeyedService
// by a string key plus a type, UniqueService by a random id. Any other
// comparable type with a Description method (contract.Identity, for example)
// works as well.
//
// Resolution rules
//
//   - Shared registrations are activated once per container; PerRequest ones
//     on every resolve.
//   - OnActivating hooks run before a shared instance is published, OnActivated
//     hooks once the outermost resolve operation has finished. This ordering
//     lets two components reference each other when one side wires the
//     reference from an OnActivated hook.
//   - When no registration exists for a service, registered Sources are asked,
//     in order, to synthesize some (see Lazy and Meta).
//   - Services of slice type are collections: every registration contributes one
//     element, and with no registrations the element service is enumerated.
//   - When a service has several registrations the last one registered wins.
//
// Import
//
//	"github.com/sghaida/compbridge/di"
package di
