package bridge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sghaida/compbridge/compose"
	"github.com/sghaida/compbridge/contract"
	"github.com/sghaida/compbridge/di"
)

//
// -----------------------------------------------------------------------------
// ExportConfiguration
// -----------------------------------------------------------------------------

// TestExportConfiguration verifies the accumulated contract and errors.
func TestExportConfiguration(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		configure func(*ExportConfiguration)
		want      contract.Identity
		wantErr   error
	}{
		{
			name:      "typed",
			configure: func(e *ExportConfiguration) { As[logger](e) },
			want:      contract.IdentityFor[logger](),
		},
		{
			name:      "named",
			configure: func(e *ExportConfiguration) { AsNamed[logger](e, "audit") },
			want:      contract.MustIdentity("audit", contract.TypeIdentityFor[logger]()),
		},
		{
			name: "type identity set twice",
			configure: func(e *ExportConfiguration) {
				e.WithMetadata(contract.TypeIdentityKey, "custom").AsNamedType("c", nil)
			},
			wantErr: contract.ErrDuplicateKey,
		},
		{
			name:      "no contract",
			configure: func(e *ExportConfiguration) { e.WithMetadata("k", 1) },
			wantErr:   contract.ErrInvalidArgument,
		},
		{
			name:      "duplicate key",
			configure: func(e *ExportConfiguration) { As[logger](e).WithMetadata("k", 1).WithMetadata("k", 2) },
			wantErr:   contract.ErrDuplicateKey,
		},
		{
			name:      "exported twice",
			configure: func(e *ExportConfiguration) { As[logger](As[logger](e)) },
			wantErr:   contract.ErrDuplicateKey,
		},
		{
			name:      "nil type identity",
			configure: func(e *ExportConfiguration) { e.WithMetadata(contract.TypeIdentityKey, nil) },
			wantErr:   contract.ErrInvalidArgument,
		},
		{
			name:      "empty name",
			configure: func(e *ExportConfiguration) { AsNamed[logger](e, "") },
			wantErr:   contract.ErrInvalidArgument,
		},
		{
			name:      "nil type",
			configure: func(e *ExportConfiguration) { e.AsType(nil) },
			wantErr:   contract.ErrInvalidArgument,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e := NewExportConfiguration()
			tc.configure(e)
			got, err := e.Identity()
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.wantErr), err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// TestExportConfiguration_FirstErrorKept verifies later errors do not
// replace the first one.
func TestExportConfiguration_FirstErrorKept(t *testing.T) {
	t.Parallel()

	e := NewExportConfiguration().WithMetadata("", 1).WithMetadata("a", 1).WithMetadata("a", 2)
	var ae contract.ArgumentError
	require.True(t, errors.As(e.Err(), &ae))
	assert.Equal(t, "key", ae.Name)

	md := NewExportConfiguration().WithMetadataMap(contract.Metadata{"x": 1, "y": 2}).Metadata()
	assert.Equal(t, contract.Metadata{"x": 1, "y": 2}, md)
}

//
// -----------------------------------------------------------------------------
// Bridge.Export
// -----------------------------------------------------------------------------

// TestExport_HostComponentToPart verifies a host component satisfies a part
// import and keeps its own sharing.
func TestExport_HostComponentToPart(t *testing.T) {
	t.Parallel()

	c, b := newBridge(t)
	reg, err := di.Provide(c, func(di.Context) (*console, error) { return &console{prefix: "host:"}, nil })
	require.NoError(t, err)
	reg.SingleInstance()

	exportReg, err := b.Export(reg, func(e *ExportConfiguration) {
		As[logger](e).WithMetadata("rank", 3)
	})
	require.NoError(t, err)
	assert.Same(t, reg, exportReg.Origin())
	assert.Equal(t, 3, exportReg.Metadata["rank"])

	def := compose.MustDefine(newConsumer,
		compose.Exports[consumer, *consumer](),
		compose.Imports(func(s *consumer, l logger) { s.log = l }, compose.RequireMetadata(contract.RequireKey[int]("rank"))),
	)
	_, err = b.RegisterCatalog(compose.NewCatalog(def), DefaultServices)
	require.NoError(t, err)

	got, err := di.Resolve[*consumer](c)
	require.NoError(t, err)
	assert.Equal(t, "host:x", got.log.Log("x"))
	assert.Same(t, di.MustResolve[*console](c), got.log)

	exports, err := ResolveExports[logger](c)
	require.NoError(t, err)
	require.Len(t, exports, 1)
	v, err := exports[0].Value()
	require.NoError(t, err)
	assert.Same(t, got.log, v)
}

// TestExport_Errors verifies nothing is registered when the export is
// invalid.
func TestExport_Errors(t *testing.T) {
	t.Parallel()

	c, b := newBridge(t)
	reg, err := di.Provide(c, func(di.Context) (*console, error) { return &console{}, nil })
	require.NoError(t, err)

	_, err = b.Export(nil, func(e *ExportConfiguration) { As[logger](e) })
	assert.True(t, errors.Is(err, contract.ErrInvalidArgument))
	_, err = b.Export(reg, nil)
	assert.True(t, errors.Is(err, contract.ErrInvalidArgument))
	_, err = b.Export(reg, func(e *ExportConfiguration) { As[logger](e).WithMetadata("k", 1).WithMetadata("k", 1) })
	assert.True(t, errors.Is(err, contract.ErrDuplicateKey))
	assert.Equal(t, 1, c.Len())
}

//
// -----------------------------------------------------------------------------
// Mappers
// -----------------------------------------------------------------------------

// TestMappers verifies the default and explicit service mappers.
func TestMappers(t *testing.T) {
	t.Parallel()

	typed := ExportRecord{ContractName: contract.ContractNameFor[logger](), TypeIdentity: contract.TypeIdentityFor[logger]()}
	named := ExportRecord{ContractName: "audit", TypeIdentity: contract.TypeIdentityFor[logger]()}
	unknown := ExportRecord{ContractName: "nobody", TypeIdentity: "nobody.Type"}

	assert.Equal(t, []di.Service{di.TypeOf[logger]()}, DefaultServices(typed))
	assert.Equal(t, []di.Service{di.Keyed[logger]("audit")}, DefaultServices(named))
	assert.Nil(t, DefaultServices(unknown))
	assert.Nil(t, NoServices(typed))
	assert.Equal(t, contract.IdentityFor[logger](), typed.Identity())

	m := MapToServices(di.TypeOf[logger](), di.Keyed[logger]("audit"), di.NewUniqueService())
	assert.Equal(t, []di.Service{di.TypeOf[logger]()}, m(typed))
	assert.Equal(t, []di.Service{di.Keyed[logger]("audit")}, m(named))
	assert.Empty(t, m(unknown))
}

// TestRegisterCatalogServices verifies interchange services expose exports
// under the caller's services.
func TestRegisterCatalogServices(t *testing.T) {
	t.Parallel()

	c, b := newBridge(t)
	_, err := b.RegisterCatalogServices(compose.NewCatalog(
		consolePart(compose.ExportName("audit")),
		consolePart(),
	), di.Keyed[logger]("audit"))
	require.NoError(t, err)

	l, err := di.ResolveKeyed[logger](c, "audit")
	require.NoError(t, err)
	assert.Equal(t, "console:a", l.Log("a"))

	_, err = di.Resolve[logger](c)
	assert.True(t, errors.Is(err, di.ErrComponentNotRegistered))

	named, err := ResolveExportsNamed[logger](c, "audit")
	require.NoError(t, err)
	assert.Len(t, named, 1)

	typed, err := ResolveExports[logger](c)
	require.NoError(t, err)
	assert.Len(t, typed, 1)

	values, err := ResolveExportValues[logger](c)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "console:b", values[0].Log("b"))

	_, err = ResolveExports[logger](nil)
	assert.True(t, errors.Is(err, contract.ErrInvalidArgument))
}
