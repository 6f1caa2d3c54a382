package parse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unitytools/medigen/internal/model"
)

func parseSource(t *testing.T, source string) *model.SourceUnit {
	t.Helper()
	unit, err := Unit(NewParser(), []byte(source), "test.cs")
	require.NoError(t, err)
	return unit
}

func TestUnitCollectsUsings(t *testing.T) {
	t.Parallel()

	unit := parseSource(t, `
using System;
using   CustomMediator ;
using static System.Math;
using Fx = UnityEngine.Physics;

namespace Game { }
`)

	// Literal lines, trimmed, in document order.
	require.Equal(t, []string{
		"using System;",
		"using   CustomMediator ;",
		"using static System.Math;",
		"using Fx = UnityEngine.Physics;",
	}, unit.Usings)

	// Only plain directives import a namespace for resolution.
	require.Equal(t, []string{"System", "CustomMediator"}, unit.Imports)
}

func TestUnitExtractsClasses(t *testing.T) {
	t.Parallel()

	unit := parseSource(t, `
using CustomMediator;

namespace Game.Features
{
    public class Pong { }

    public class Ping
    {
        public class PingHandler : QueryHandler<Ping, Pong>
        {
        }
    }
}
`)

	require.Len(t, unit.Classes, 3)

	pong := unit.Classes[0]
	require.Equal(t, "Pong", pong.Name)
	require.Equal(t, "Game.Features", pong.Namespace)
	require.Empty(t, pong.Outer)
	require.Empty(t, pong.Bases)
	require.Equal(t, "Game.Features.Pong", pong.FullName())

	ping := unit.Classes[1]
	require.Equal(t, "Ping", ping.Name)

	handler := unit.Classes[2]
	require.Equal(t, "PingHandler", handler.Name)
	require.Equal(t, []string{"Ping"}, handler.Outer)
	require.Equal(t, "Game.Features.Ping.PingHandler", handler.FullName())
	require.Equal(t, []model.TypeRef{
		{Name: "QueryHandler", Args: []string{"Ping", "Pong"}},
	}, handler.Bases)
	require.Same(t, unit, handler.Unit)
}

func TestUnitQualifiedAndInterfaceBases(t *testing.T) {
	t.Parallel()

	unit := parseSource(t, `
namespace Game
{
    public class SaveHandler : CustomMediator.CommandHandler<SaveGame>, System.IDisposable
    {
    }
}
`)

	require.Len(t, unit.Classes, 1)
	require.Equal(t, []model.TypeRef{
		{Name: "CustomMediator.CommandHandler", Args: []string{"SaveGame"}},
		{Name: "System.IDisposable"},
	}, unit.Classes[0].Bases)
}

func TestUnitNestedNamespaces(t *testing.T) {
	t.Parallel()

	unit := parseSource(t, `
namespace Outer.Mid
{
    namespace Inner
    {
        class Deep : Base { }
    }
}
`)

	require.Len(t, unit.Classes, 1)
	require.Equal(t, "Outer.Mid.Inner", unit.Classes[0].Namespace)
	require.Equal(t, "Outer.Mid.Inner.Deep", unit.Classes[0].FullName())
}

func TestUnitNormalizesTypeArguments(t *testing.T) {
	t.Parallel()

	unit := parseSource(t, `
namespace Game
{
    class H : QueryHandler<Ping,
        List<Pong>>
    {
    }
}
`)

	require.Len(t, unit.Classes, 1)
	require.Equal(t, []string{"Ping", "List<Pong>"}, unit.Classes[0].Bases[0].Args)
}

func TestUnitToleratesMalformedSource(t *testing.T) {
	t.Parallel()

	// The broken declaration degrades; the valid one still parses.
	unit := parseSource(t, `
namespace Game
{
    class {{{ oops

    class Valid : CommandHandler<Save> { }
}
`)

	names := make([]string, 0, len(unit.Classes))
	for _, c := range unit.Classes {
		names = append(names, c.Name)
	}
	require.Contains(t, names, "Valid")
}

func TestUnitEmptySource(t *testing.T) {
	t.Parallel()

	unit, err := Unit(NewParser(), nil, "empty.cs")
	require.NoError(t, err)
	require.Empty(t, unit.Classes)
	require.Empty(t, unit.Usings)
}
