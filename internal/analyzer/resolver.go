package analyzer

import (
	"sort"
	"strings"

	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/ast"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/diagnostics"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/reflection"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/symbols"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/token"
	"github.com/Lerchensporn/PHP-Static-Type-Checker/internal/typesystem"
)

// InitClass fully initializes a user-defined class: parent, interfaces,
// traits, flattened members, conformance checks. It is idempotent and
// guards against re-entry; cycles in extends are rejected by the language
// but must not hang the resolver.
func (a *Analyzer) InitClass(ctx *symbols.Context, info *reflection.ClassInfo) {
	if info == nil || info.Initialized || info.Host || info.Poisoned || info.Resolving {
		return
	}
	info.Resolving = true
	defer func() {
		info.Resolving = false
		info.Initialized = true
	}()

	cctx := ctx.Clone()
	cctx.File = info.File
	cctx.Namespace = info.Namespace
	if info.Aliases != nil {
		cctx.Aliases = info.Aliases
	}
	cctx.CurrentClass = info

	decl := info.Node
	if decl == nil {
		// Every user-defined entry is registered with its AST node; a
		// missing node is a broken invariant, not a user defect.
		cctx.Report(diagnostics.ErrInternal, token.Token{}, "class "+info.Name+" has no declaration node")
		return
	}

	ifaceMethods := a.resolveInterfaces(cctx, info, decl)
	// Interface constants rank lowest: hold them back until own, trait
	// and parent constants are in place.
	ifaceConsts := info.Constants
	info.Constants = make(map[string]*reflection.ConstInfo)
	a.resolveParent(cctx, info, decl)

	if decl.EnumBacking != nil {
		info.EnumBacking = a.resolveType(cctx, decl.EnumBacking, true)
	}

	var traitUses []*ast.UseTrait
	for _, stmt := range decl.Body {
		switch s := stmt.(type) {
		case *ast.PropertyDecl:
			a.resolveProperties(cctx, info, s)
		case *ast.ConstDecl:
			a.resolveClassConstants(cctx, info, s)
		case *ast.FunctionDecl:
			a.resolveMethod(cctx, info, s, ifaceMethods)
		case *ast.EnumCase:
			a.resolveEnumCase(cctx, info, s)
		case *ast.UseTrait:
			traitUses = append(traitUses, s)
		}
	}

	traitProps, traitConsts, traitMethods := a.resolveTraits(cctx, info, traitUses)

	// Precedence cascade: own > traits > parent > interfaces for
	// methods; own > traits > parent > interfaces for constants;
	// own > traits > parent for properties.
	for name, m := range traitMethods {
		if _, own := info.Methods[name]; !own {
			info.Methods[name] = m
		}
	}
	for name, p := range traitProps {
		if _, own := info.Properties[name]; !own {
			info.Properties[name] = p
		}
	}
	for name, c := range traitConsts {
		if _, own := info.Constants[name]; !own {
			info.Constants[name] = c
		}
	}
	if info.Parent != nil {
		for name, m := range info.Parent.Methods {
			if _, have := info.Methods[name]; !have {
				info.Methods[name] = m
			}
		}
		for name, p := range info.Parent.Properties {
			if _, have := info.Properties[name]; !have {
				info.Properties[name] = p
			}
		}
		for name, c := range info.Parent.Constants {
			if _, have := info.Constants[name]; !have {
				info.Constants[name] = c
			}
		}
	}
	for name, m := range ifaceMethods {
		if _, have := info.Methods[name]; !have {
			info.Methods[name] = m
		}
	}
	for name, c := range ifaceConsts {
		if _, have := info.Constants[name]; !have {
			info.Constants[name] = c
		}
	}

	if info.Kind == ast.KindClass && !info.Abstract {
		for _, m := range methodsInOrder(info.Methods) {
			if m.Abstract {
				cctx.Report(diagnostics.ErrAbstractNotSatisfied, decl.Token, info.Name, m.Name)
			}
		}
	}

	if info.HasMethod("__toString") {
		info.InterfaceClosure["stringable"] = true
	}

	if info.Kind == ast.KindEnum {
		a.finishEnum(cctx, info)
	}
}

// resolveInterfaces initializes the declared interfaces in order and
// returns their accumulated methods keyed by lowercased name. Interface
// constants are collected into info.Constants; InitClass sets them aside
// and merges them last, so own, trait and parent constants shadow them.
func (a *Analyzer) resolveInterfaces(ctx *symbols.Context, info *reflection.ClassInfo, decl *ast.ClassDecl) map[string]*reflection.FunctionSig {
	methods := make(map[string]*reflection.FunctionSig)
	for _, n := range decl.Implements {
		fqn, ok := ctx.FQClassName(n, true)
		if !ok {
			continue
		}
		ic := ctx.Env.GetClass(fqn)
		if ic == nil || ic.Kind != ast.KindInterface {
			ctx.Report(diagnostics.ErrUndefinedInterface, n.Token, n.String())
			continue
		}
		a.InitClass(ctx, ic)
		info.InterfaceNames = append(info.InterfaceNames, ic.Name)
		info.InterfaceClosure[strings.ToLower(ic.Name)] = true
		for k := range ic.InterfaceClosure {
			info.InterfaceClosure[k] = true
		}
		for name, m := range ic.Methods {
			if _, have := methods[name]; !have {
				methods[name] = m
			}
		}
		for name, c := range ic.Constants {
			if _, have := info.Constants[name]; !have {
				info.Constants[name] = c
			}
		}
	}
	return methods
}

func (a *Analyzer) resolveParent(ctx *symbols.Context, info *reflection.ClassInfo, decl *ast.ClassDecl) {
	if decl.Extends == nil {
		return
	}
	fqn, ok := ctx.FQClassName(decl.Extends, true)
	if !ok {
		return
	}
	parent := ctx.Env.GetClass(fqn)
	if parent == nil {
		ctx.Report(diagnostics.ErrUndefinedClass, decl.Extends.Token, decl.Extends.String())
		return
	}
	// Interfaces extend interfaces through the same syntax.
	if info.Kind == ast.KindInterface {
		if parent.Kind != ast.KindInterface {
			ctx.Report(diagnostics.ErrUndefinedInterface, decl.Extends.Token, decl.Extends.String())
			return
		}
		a.InitClass(ctx, parent)
		info.InterfaceClosure[strings.ToLower(parent.Name)] = true
		for k := range parent.InterfaceClosure {
			info.InterfaceClosure[k] = true
		}
		info.ParentName = parent.Name
		info.Parent = parent
		return
	}
	if parent.Final {
		ctx.Report(diagnostics.ErrExtendFinalClass, decl.Extends.Token, parent.Name)
	}
	a.InitClass(ctx, parent)
	info.ParentName = parent.Name
	info.Parent = parent
	for k := range parent.InterfaceClosure {
		info.InterfaceClosure[k] = true
	}
}

func (a *Analyzer) resolveProperties(ctx *symbols.Context, info *reflection.ClassInfo, s *ast.PropertyDecl) {
	if info.Kind == ast.KindInterface {
		ctx.Report(diagnostics.ErrInterfaceProperty, s.Token, info.Name)
		return
	}
	declared := a.resolveType(ctx, s.Type, true)
	for _, prop := range s.Props {
		if s.Modifiers.Has(ast.Readonly) {
			if s.Type == nil {
				ctx.Report(diagnostics.ErrReadonlyNoType, prop.Token, info.Name, prop.Name)
			}
			if prop.Default != nil {
				ctx.Report(diagnostics.ErrReadonlyDefault, prop.Token, info.Name, prop.Name)
			}
		}
		if prop.Default != nil && declared != nil {
			if lt := literalType(prop.Default); lt != nil && !typesystem.Subtype(lt, declared, ctx.Env) {
				ctx.Report(diagnostics.ErrDefaultValueType, prop.Token,
					typesystem.TypeString(lt, false), typesystem.TypeString(declared, false))
			}
		}
		if _, dup := info.Properties[prop.Name]; dup {
			ctx.Report(diagnostics.ErrRedeclaredProperty, prop.Token, info.Name, prop.Name)
			continue
		}
		info.Properties[prop.Name] = &reflection.PropInfo{
			Name:      prop.Name,
			Type:      declared,
			Default:   prop.Default,
			Modifiers: s.Modifiers,
		}
	}
}

func (a *Analyzer) resolveClassConstants(ctx *symbols.Context, info *reflection.ClassInfo, s *ast.ConstDecl) {
	declared := a.resolveType(ctx, s.Type, true)
	for _, c := range s.Consts {
		if declared != nil {
			if lt := literalType(c.Value); lt != nil && !typesystem.Subtype(lt, declared, ctx.Env) {
				ctx.Report(diagnostics.ErrConstantType, c.Token,
					typesystem.TypeString(lt, false), typesystem.TypeString(declared, false))
			}
		}
		if _, dup := info.Constants[c.Name]; dup {
			ctx.Report(diagnostics.ErrRedeclaredClassConstant, c.Token, info.Name, c.Name)
			continue
		}
		ctype := declared
		if ctype == nil {
			ctype = literalType(c.Value)
		}
		info.Constants[c.Name] = &reflection.ConstInfo{
			Name:      c.Name,
			Type:      ctype,
			Value:     c.Value,
			Modifiers: s.Modifiers,
		}
	}
}

func (a *Analyzer) resolveMethod(ctx *symbols.Context, info *reflection.ClassInfo, decl *ast.FunctionDecl, ifaceMethods map[string]*reflection.FunctionSig) {
	hasBody := decl.HasBody || decl.Body != nil

	if info.Kind == ast.KindInterface {
		if decl.Modifiers.Visibility() != ast.Public {
			ctx.Report(diagnostics.ErrInterfaceMethodVis, decl.Token, info.Name, decl.Name)
		}
		if hasBody {
			ctx.Report(diagnostics.ErrInterfaceMethodBody, decl.Token, info.Name, decl.Name)
		}
		if decl.Modifiers.Has(ast.Abstract) {
			ctx.Report(diagnostics.ErrInterfaceAbstract, decl.Token, info.Name, decl.Name)
		}
	} else if decl.Modifiers.Has(ast.Abstract) {
		if hasBody {
			ctx.Report(diagnostics.ErrAbstractMethodBody, decl.Token, info.Name, decl.Name)
		}
		if decl.Modifiers.Has(ast.Private) {
			ctx.Report(diagnostics.ErrAbstractPrivate, decl.Token, info.Name, decl.Name)
		}
	}

	if info.Parent != nil {
		if inherited := info.Parent.Method(decl.Name); inherited != nil && inherited.Modifiers.Has(ast.Final) {
			ctx.Report(diagnostics.ErrOverrideFinalMethod, decl.Token, inherited.DeclaringClass, decl.Name)
		}
	}

	sig := a.buildMethodSig(ctx, info, decl)
	if info.Kind == ast.KindInterface {
		// Interface methods are implicitly abstract obligations for
		// every implementor.
		sig.Abstract = true
	}

	if contract, ok := ifaceMethods[strings.ToLower(decl.Name)]; ok {
		a.checkInterfaceConformance(ctx, decl, sig, contract)
	}

	key := strings.ToLower(decl.Name)
	if _, dup := info.Methods[key]; dup {
		ctx.Report(diagnostics.ErrRedeclaredMethod, decl.Token, info.Name, decl.Name)
		return
	}
	info.Methods[key] = sig

	if key == "__construct" {
		a.promoteConstructorParams(info, sig, decl)
	}
}

// promoteConstructorParams lifts constructor parameters flagged with a
// visibility modifier into properties of the class.
func (a *Analyzer) promoteConstructorParams(info *reflection.ClassInfo, sig *reflection.FunctionSig, decl *ast.FunctionDecl) {
	for i, p := range decl.Params {
		if p.Modifiers&(ast.Public|ast.Protected|ast.Private) == 0 {
			continue
		}
		if _, dup := info.Properties[p.Name]; dup {
			continue
		}
		info.Properties[p.Name] = &reflection.PropInfo{
			Name:      p.Name,
			Type:      sig.Params[i].Type,
			Modifiers: p.Modifiers,
		}
	}
}

// checkInterfaceConformance cross-checks a method against the interface
// contract of the same name: modifiers (ignoring abstract), parameter
// count and types (by sorted pretty-print; a variadic tail absorbs the
// rest), and the return type.
func (a *Analyzer) checkInterfaceConformance(ctx *symbols.Context, decl *ast.FunctionDecl, sig, contract *reflection.FunctionSig) {
	ownMods := sig.Modifiers &^ ast.Abstract
	contractMods := contract.Modifiers &^ ast.Abstract
	if ownMods.Visibility() != contractMods.Visibility() || ownMods.Has(ast.Static) != contractMods.Has(ast.Static) {
		ctx.Report(diagnostics.ErrInterfaceModifiers, decl.Token, decl.Name)
	}

	ownVariadic := len(sig.Params) > 0 && sig.Params[len(sig.Params)-1].Variadic
	if len(sig.Params) != len(contract.Params) {
		if !(ownVariadic && len(sig.Params) <= len(contract.Params)) {
			ctx.Report(diagnostics.ErrInterfaceParamCount, decl.Token, decl.Name)
			return
		}
	}
	for i, cp := range contract.Params {
		var own *reflection.Param
		if i < len(sig.Params) {
			own = sig.Params[i]
		} else if ownVariadic {
			own = sig.Params[len(sig.Params)-1]
		} else {
			break
		}
		if typeKey(own.Type) != typeKey(cp.Type) {
			ctx.Report(diagnostics.ErrInterfaceParamTypes, decl.Token, decl.Name)
			break
		}
	}

	if typeKey(sig.ReturnType) != typeKey(contract.ReturnType) {
		ctx.Report(diagnostics.ErrInterfaceReturnType, decl.Token, decl.Name)
	}
}

// typeKey renders a type for structural comparison: sorted member order,
// case-folded names. nil annotations compare equal only to nil.
func typeKey(t typesystem.Type) string {
	if t == nil {
		return ""
	}
	return strings.ToLower(typesystem.TypeString(t, true))
}

func (a *Analyzer) resolveEnumCase(ctx *symbols.Context, info *reflection.ClassInfo, s *ast.EnumCase) {
	if info.Kind != ast.KindEnum {
		ctx.Report(diagnostics.ErrEnumCaseOutsideEnum, s.Token, s.Name)
		return
	}
	if info.EnumBacking != nil && s.Value == nil {
		ctx.Report(diagnostics.ErrBackedCaseNoValue, s.Token, s.Name, info.Name)
	}
	if info.EnumBacking == nil && s.Value != nil {
		ctx.Report(diagnostics.ErrPureCaseWithValue, s.Token, s.Name, info.Name)
	}
	if info.EnumBacking != nil && s.Value != nil {
		if lt := literalType(s.Value); lt != nil && !typesystem.Subtype(lt, info.EnumBacking, ctx.Env) {
			ctx.Report(diagnostics.ErrEnumCaseType, s.Token,
				typesystem.TypeString(lt, false), typesystem.TypeString(info.EnumBacking, false))
		}
	}
	if _, dup := info.Constants[s.Name]; dup {
		ctx.Report(diagnostics.ErrRedeclaredClassConstant, s.Token, info.Name, s.Name)
		return
	}
	info.Constants[s.Name] = &reflection.ConstInfo{
		Name:      s.Name,
		Type:      typesystem.Named{Name: info.Name},
		Value:     s.Value,
		Modifiers: ast.Public,
	}
}

// resolveTraits flattens the used traits, honoring insteadof adaptations.
// A method provided by two traits without disambiguation or a local
// override is a collision.
func (a *Analyzer) resolveTraits(ctx *symbols.Context, info *reflection.ClassInfo, uses []*ast.UseTrait) (map[string]*reflection.PropInfo, map[string]*reflection.ConstInfo, map[string]*reflection.FunctionSig) {
	props := make(map[string]*reflection.PropInfo)
	consts := make(map[string]*reflection.ConstInfo)
	methods := make(map[string]*reflection.FunctionSig)
	source := make(map[string]string) // method -> trait that provided it

	type skipKey struct{ trait, method string }
	skip := make(map[skipKey]bool)
	for _, use := range uses {
		for _, ad := range use.Adaptations {
			for _, losing := range ad.InsteadOf {
				fqn, ok := ctx.FQClassName(losing, false)
				if !ok {
					continue
				}
				skip[skipKey{strings.ToLower(fqn), strings.ToLower(ad.Method)}] = true
			}
		}
	}

	for _, use := range uses {
		for _, n := range use.Traits {
			fqn, ok := ctx.FQClassName(n, true)
			if !ok {
				continue
			}
			trait := ctx.Env.GetClass(fqn)
			if trait == nil || trait.Kind != ast.KindTrait {
				ctx.Report(diagnostics.ErrUndefinedTrait, n.Token, n.String())
				continue
			}
			a.InitClass(ctx, trait)
			info.TraitNames = append(info.TraitNames, trait.Name)
			traitKey := strings.ToLower(trait.Name)
			for _, name := range sortedMethodKeys(trait.Methods) {
				m := trait.Methods[name]
				if skip[skipKey{traitKey, name}] {
					continue
				}
				if _, own := info.Methods[name]; own {
					continue
				}
				if from, taken := source[name]; taken && from != traitKey {
					ctx.Report(diagnostics.ErrTraitMethodCollision, use.Token, name, info.Name)
					continue
				}
				source[name] = traitKey
				methods[name] = m
			}
			for name, p := range trait.Properties {
				if _, have := props[name]; !have {
					props[name] = p
				}
			}
			for name, c := range trait.Constants {
				if _, have := consts[name]; !have {
					consts[name] = c
				}
			}
		}
	}
	return props, consts, methods
}

// finishEnum adds the implicit surface of an enum: the UnitEnum marker,
// and for backed enums the synthetic readonly value property plus the
// host BackedEnum methods, imported as pre-implemented with `static`
// bound to the enum itself.
func (a *Analyzer) finishEnum(ctx *symbols.Context, info *reflection.ClassInfo) {
	info.InterfaceClosure["unitenum"] = true
	if info.EnumBacking == nil {
		return
	}
	info.InterfaceClosure["backedenum"] = true
	if _, have := info.Properties["value"]; !have {
		info.Properties["value"] = &reflection.PropInfo{
			Name:      "value",
			Type:      info.EnumBacking,
			Modifiers: ast.Public | ast.Readonly,
		}
	}
	backed := ctx.Env.GetClass("BackedEnum")
	if backed == nil {
		return
	}
	for name, m := range backed.Methods {
		if _, have := info.Methods[name]; have {
			continue
		}
		imported := *m
		imported.Abstract = false
		imported.HasBody = true
		imported.DeclaringClass = info.Name
		imported.ReturnType = bindStaticType(imported.ReturnType, info.Name)
		info.Methods[name] = &imported
	}
}

// bindStaticType replaces the late-bound `static` tag with the concrete
// class name.
func bindStaticType(t typesystem.Type, class string) typesystem.Type {
	switch v := t.(type) {
	case typesystem.Named:
		if strings.EqualFold(v.Name, "static") {
			v.Name = class
		}
		return v
	case typesystem.Union:
		members := make([]typesystem.Type, len(v.Members))
		for i, m := range v.Members {
			members[i] = bindStaticType(m, class)
		}
		return typesystem.MakeUnion(members...)
	}
	return t
}

// sortedMethodKeys returns the map keys sorted so diagnostics derived
// from map iteration stay deterministic.
func sortedMethodKeys(m map[string]*reflection.FunctionSig) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// methodsInOrder returns the map values sorted by name.
func methodsInOrder(m map[string]*reflection.FunctionSig) []*reflection.FunctionSig {
	keys := sortedMethodKeys(m)
	out := make([]*reflection.FunctionSig, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}
