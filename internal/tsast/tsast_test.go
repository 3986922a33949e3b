package tsast

import (
	"testing"

	"github.com/couzic/ts-graph-mcp-sub001/internal/astkit"
)

func TestFunctionDeclExtraction(t *testing.T) {
	src := []byte(`export function add(a: number, b: number): number {
  return helper(a, b);
}

function helper(x: number, y: number): number {
  return x + y;
}
`)
	sf := newSourceFile("src/math.ts", dialectTS, src)

	fns := sf.Functions()
	if len(fns) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(fns))
	}
	if fns[0].Name != "add" || !fns[0].Exported {
		t.Fatalf("expected exported add, got %+v", fns[0])
	}
	if len(fns[0].Params) != 2 || fns[0].Params[0].TypeText != "number" {
		t.Fatalf("unexpected params: %+v", fns[0].Params)
	}
	if len(fns[0].BodyCalls) != 1 || fns[0].BodyCalls[0].Callee != "helper" {
		t.Fatalf("expected call to helper, got %+v", fns[0].BodyCalls)
	}
}

func TestClassExtraction(t *testing.T) {
	src := []byte(`export class UserService extends BaseService implements Disposable {
  private repo: Repo;

  async addUser(name: string): Promise<void> {
    this.repo.save(name);
  }
}
`)
	sf := newSourceFile("src/svc.ts", dialectTS, src)

	classes := sf.Classes()
	if len(classes) != 1 {
		t.Fatalf("expected 1 class, got %d", len(classes))
	}
	cls := classes[0]
	if cls.Name != "UserService" || cls.Extends != "BaseService" {
		t.Fatalf("unexpected class: %+v", cls)
	}
	if len(cls.Implements) != 1 || cls.Implements[0] != "Disposable" {
		t.Fatalf("unexpected implements: %+v", cls.Implements)
	}
	if len(cls.Methods) != 1 || cls.Methods[0].Name != "addUser" || !cls.Methods[0].Async {
		t.Fatalf("unexpected methods: %+v", cls.Methods)
	}
	if len(cls.Properties) != 1 || cls.Properties[0].Name != "repo" {
		t.Fatalf("unexpected properties: %+v", cls.Properties)
	}
}

func TestImportExtraction(t *testing.T) {
	src := []byte(`import { formatDate } from './util';
import Logger from './logger';
import * as path from 'path';
`)
	sf := newSourceFile("src/consumer.ts", dialectTS, src)

	imports := sf.Imports()
	if len(imports) != 3 {
		t.Fatalf("expected 3 import declarations, got %d", len(imports))
	}
}

func TestArrowVariableBecomesFunction(t *testing.T) {
	src := []byte(`export const double = (n: number): number => n * 2;
`)
	sf := newSourceFile("src/math.ts", dialectTS, src)

	fns := sf.Functions()
	if len(fns) != 1 || fns[0].Name != "double" || !fns[0].Exported {
		t.Fatalf("expected arrow rewritten to exported function, got %+v", fns)
	}
	if len(sf.Variables()) != 0 {
		t.Fatalf("expected no plain variable for arrow-valued const, got %+v", sf.Variables())
	}
}

func TestSubscriptAccessYieldsReferenceUse(t *testing.T) {
	src := []byte(`function lookup(key: string) {
  return cache[key];
}
`)
	sf := newSourceFile("src/lookup.ts", dialectTS, src)

	fns := sf.Functions()
	if len(fns) != 1 {
		t.Fatalf("expected 1 function, got %d", len(fns))
	}
	var found bool
	for _, ref := range fns[0].BodyRefs {
		if ref.Name == "cache" {
			found = true
			if ref.Context != astkit.UseAccess {
				t.Fatalf("expected UseAccess context, got %v", ref.Context)
			}
		}
	}
	if !found {
		t.Fatal("expected a REFERENCES use of cache from cache[key]")
	}
}

func TestBracketIndexedCallDoesNotReferenceBase(t *testing.T) {
	src := []byte(`function dispatch(obj: any) {
  obj["handler"]();
}
`)
	sf := newSourceFile("src/dispatch.ts", dialectTS, src)

	fns := sf.Functions()
	if len(fns) != 1 {
		t.Fatalf("expected 1 function, got %d", len(fns))
	}
	for _, ref := range fns[0].BodyRefs {
		if ref.Name == "obj" {
			t.Fatalf("expected no REFERENCES edge for a bracket-indexed call base, got %+v", ref)
		}
	}
}
