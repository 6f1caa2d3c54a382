package gen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unitytools/medigen/internal/model"
)

func queryReg(unit *model.SourceUnit, name, query, result string) model.Registration {
	return model.Registration{
		HandlerName: name,
		Classification: model.Classification{
			Kind:       model.QueryHandler,
			QueryType:  query,
			ResultType: result,
		},
		Unit: unit,
	}
}

func commandReg(unit *model.SourceUnit, name, command string) model.Registration {
	return model.Registration{
		HandlerName: name,
		Classification: model.Classification{
			Kind:        model.CommandHandler,
			CommandType: command,
		},
		Unit: unit,
	}
}

func TestRenderModule(t *testing.T) {
	t.Parallel()

	unit := &model.SourceUnit{Path: "a.cs"}
	regs := []model.Registration{
		queryReg(unit, "PingHandler", "Ping", "Pong"),
		commandReg(unit, "SaveHandler", "SaveGame"),
	}

	got := Render("Game.Infrastructure", regs, []string{"using System;"})

	want := `// <auto-generated/>
using VContainer;
using CustomMediator;
using System;

namespace Game.Infrastructure
{
    public static class VContainerCustomMediatorRegistration
    {
        public static void RegisterCustomMediatorHandlers(this IContainerBuilder builder)
        {
            builder.Register<Ping.PingHandler>(Lifetime.Transient).As<IQueryHandler<Ping, Pong>>();
            builder.Register<SaveGame.SaveHandler>(Lifetime.Transient).As<ICommandHandler<SaveGame>>();
        }
    }
}
`
	require.Equal(t, want, got)
}

func TestRenderEmptyModule(t *testing.T) {
	t.Parallel()

	got := Render("Game", nil, nil)

	require.True(t, strings.HasPrefix(got, Marker+"\n"))
	require.Contains(t, got, "public static class VContainerCustomMediatorRegistration")
	require.Contains(t, got, "RegisterCustomMediatorHandlers(this IContainerBuilder builder)")
	require.NotContains(t, got, "builder.Register<")
}

func TestRenderDeterministic(t *testing.T) {
	t.Parallel()

	unit := &model.SourceUnit{Path: "a.cs"}
	regs := []model.Registration{queryReg(unit, "PingHandler", "Ping", "Pong")}
	usings := []string{"using System;", "using UnityEngine;"}

	require.Equal(t, Render("Game", regs, usings), Render("Game", regs, usings))
}

func TestCollectUsingsDedupAndSort(t *testing.T) {
	t.Parallel()

	a := &model.SourceUnit{Path: "a.cs", Usings: []string{
		"using UnityEngine;",
		"using System;",
	}}
	b := &model.SourceUnit{Path: "b.cs", Usings: []string{
		"using System;",
		"using Game.Core;",
	}}

	regs := []model.Registration{
		queryReg(a, "PingHandler", "Ping", "Pong"),
		queryReg(a, "OtherHandler", "Other", "Pong"),
		commandReg(b, "SaveHandler", "SaveGame"),
	}

	require.Equal(t, []string{
		"using Game.Core;",
		"using System;",
		"using UnityEngine;",
	}, CollectUsings(regs))
}

func TestCollectUsingsExcludesFixedImports(t *testing.T) {
	t.Parallel()

	unit := &model.SourceUnit{Path: "a.cs", Usings: []string{
		"using VContainer;",
		"using CustomMediator;",
		"using System;",
	}}
	regs := []model.Registration{commandReg(unit, "SaveHandler", "SaveGame")}

	require.Equal(t, []string{"using System;"}, CollectUsings(regs))
}

func TestCollectUsingsOnlyContributingUnits(t *testing.T) {
	t.Parallel()

	contributing := &model.SourceUnit{Path: "a.cs", Usings: []string{"using System;"}}
	regs := []model.Registration{queryReg(contributing, "PingHandler", "Ping", "Pong")}

	// Units without a registration never reach the collector; their usings
	// must not leak in via shared state.
	require.Equal(t, []string{"using System;"}, CollectUsings(regs))
	require.Empty(t, CollectUsings(nil))
}
