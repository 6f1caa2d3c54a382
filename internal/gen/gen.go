// Package gen renders the VContainer registration module.
//
// The output format is a compatibility contract: a generated-file marker,
// two fixed framework imports, the collected usings, and one registration
// statement per handler inside a static extension class. Rendering trusts
// the classifier's arity invariant and performs no validation of its own.
package gen

import (
	"fmt"
	"strings"

	"github.com/unitytools/medigen/internal/model"
)

// FileName is the fixed name of the generated module.
const FileName = "VContainerCustomMediatorRegistration.cs"

// Marker is the literal generated-file comment at the top of the module.
const Marker = "// <auto-generated/>"

const (
	usingContainer = "using VContainer;"
	usingContracts = "using CustomMediator;"

	className  = "VContainerCustomMediatorRegistration"
	methodName = "RegisterCustomMediatorHandlers"
)

// Render produces the complete module text for the given namespace,
// registrations (in discovery order) and collected usings. Output is fully
// determined by its inputs: identical pipelines yield byte-identical text.
func Render(namespace string, regs []model.Registration, usings []string) string {
	var b strings.Builder

	b.WriteString(Marker + "\n")
	b.WriteString(usingContainer + "\n")
	b.WriteString(usingContracts + "\n")
	for _, u := range usings {
		b.WriteString(u + "\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "namespace %s\n{\n", namespace)
	fmt.Fprintf(&b, "    public static class %s\n    {\n", className)
	fmt.Fprintf(&b, "        public static void %s(this IContainerBuilder builder)\n        {\n", methodName)

	for _, reg := range regs {
		if stmt := statement(reg); stmt != "" {
			b.WriteString("            " + stmt + "\n")
		}
	}

	b.WriteString("        }\n    }\n}\n")
	return b.String()
}

// statement renders one registration: the concrete handler type (nested in
// its request type by CustomMediator convention) bound transient, as the
// contract interface instantiated with the classification's type arguments.
func statement(reg model.Registration) string {
	switch reg.Kind {
	case model.QueryHandler:
		return fmt.Sprintf(
			"builder.Register<%s.%s>(Lifetime.Transient).As<IQueryHandler<%s, %s>>();",
			reg.QueryType, reg.HandlerName, reg.QueryType, reg.ResultType,
		)
	case model.CommandHandler:
		return fmt.Sprintf(
			"builder.Register<%s.%s>(Lifetime.Transient).As<ICommandHandler<%s>>();",
			reg.CommandType, reg.HandlerName, reg.CommandType,
		)
	}
	return ""
}
