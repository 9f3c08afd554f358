package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, source string) []Diagnostic {
	t.Helper()
	a := New()
	defer a.Close()
	return a.Analyze([]byte(source))
}

func filterKind(diags []Diagnostic, kind Kind) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

func TestUnusedImportSimple(t *testing.T) {
	diags := analyze(t, "import os\nimport sys\nprint(sys.path)\n")
	unused := filterKind(diags, UnusedImport)
	require.Len(t, unused, 1)
	assert.Equal(t, "os", unused[0].Module)
	assert.Equal(t, 1, unused[0].Line)
}

func TestUnusedImportDotted(t *testing.T) {
	diags := analyze(t, "import os.path\n")
	unused := filterKind(diags, UnusedImport)
	require.Len(t, unused, 1)
	assert.Equal(t, "os.path", unused[0].Module)
}

func TestDottedImportUsedThroughTopName(t *testing.T) {
	diags := analyze(t, "import os.path\nprint(os.getcwd())\n")
	assert.Empty(t, filterKind(diags, UnusedImport))
}

func TestUnusedImportAliased(t *testing.T) {
	diags := analyze(t, "import numpy as np\n")
	unused := filterKind(diags, UnusedImport)
	require.Len(t, unused, 1)
	assert.Equal(t, "numpy", unused[0].Module)
}

func TestAliasedImportOriginalNameIsNotABinding(t *testing.T) {
	// "import numpy as np" binds np, not numpy.
	diags := analyze(t, "import numpy as np\nprint(numpy)\n")
	unused := filterKind(diags, UnusedImport)
	require.Len(t, unused, 1)
	assert.Equal(t, "numpy", unused[0].Module)
}

func TestUnusedFromImport(t *testing.T) {
	diags := analyze(t, "from os import path, sep\nprint(sep)\n")
	unused := filterKind(diags, UnusedImport)
	require.Len(t, unused, 1)
	assert.Equal(t, "os.path", unused[0].Module)
	assert.Equal(t, 1, unused[0].Line)
}

func TestUnusedFromImportAliased(t *testing.T) {
	diags := analyze(t, "from os import path as p\n")
	unused := filterKind(diags, UnusedImport)
	require.Len(t, unused, 1)
	assert.Equal(t, "os.path", unused[0].Module)
}

func TestRelativeFromImport(t *testing.T) {
	diags := analyze(t, "from . import frommodule\n")
	unused := filterKind(diags, UnusedImport)
	require.Len(t, unused, 1)
	assert.Equal(t, ".frommodule", unused[0].Module)
}

func TestFutureImportIgnored(t *testing.T) {
	diags := analyze(t, "from __future__ import annotations\n")
	assert.Empty(t, diags)
}

func TestMultilineImportLine(t *testing.T) {
	source := "from os import (\n    path,\n    sep,\n)\n"
	diags := analyze(t, source)
	unused := filterKind(diags, UnusedImport)
	require.Len(t, unused, 2)
	for _, d := range unused {
		assert.Equal(t, 1, d.Line)
	}
}

func TestImportUsedInFunctionBody(t *testing.T) {
	diags := analyze(t, "import os\ndef f():\n    return os.getcwd()\n")
	assert.Empty(t, filterKind(diags, UnusedImport))
}

func TestImportUsedOnlyAsAttribute(t *testing.T) {
	// x.os does not use the import.
	diags := analyze(t, "import os\nx.os\n")
	assert.Len(t, filterKind(diags, UnusedImport), 1)
}

func TestImportUsedAsKeywordArgumentValue(t *testing.T) {
	diags := analyze(t, "import os\nf(cwd=os)\n")
	assert.Empty(t, filterKind(diags, UnusedImport))

	diags = analyze(t, "import os\nf(os=1)\n")
	assert.Len(t, filterKind(diags, UnusedImport), 1)
}

func TestUnusedVariableInFunction(t *testing.T) {
	diags := analyze(t, "def f():\n    x = 1\n    return 2\n")
	unused := filterKind(diags, UnusedVariable)
	require.Len(t, unused, 1)
	assert.Equal(t, "x", unused[0].Name)
	assert.Equal(t, 2, unused[0].Line)
}

func TestUsedVariableNotReported(t *testing.T) {
	diags := analyze(t, "def f():\n    x = 1\n    return x\n")
	assert.Empty(t, filterKind(diags, UnusedVariable))
}

func TestModuleLevelAssignmentNotReported(t *testing.T) {
	diags := analyze(t, "x = 1\n")
	assert.Empty(t, filterKind(diags, UnusedVariable))
}

func TestTupleUnpackingNotReported(t *testing.T) {
	diags := analyze(t, "def f():\n    x, y = g()\n    return 0\n")
	assert.Empty(t, filterKind(diags, UnusedVariable))
}

func TestAugmentedAssignmentCountsAsUse(t *testing.T) {
	diags := analyze(t, "def f():\n    x = 0\n    x += 1\n")
	assert.Empty(t, filterKind(diags, UnusedVariable))
}

func TestLastAssignmentLineReported(t *testing.T) {
	diags := analyze(t, "def f():\n    x = 1\n    x = 2\n    return 0\n")
	unused := filterKind(diags, UnusedVariable)
	require.Len(t, unused, 1)
	assert.Equal(t, 3, unused[0].Line)
}

func TestGlobalAssignmentNotReported(t *testing.T) {
	diags := analyze(t, "def f():\n    global x\n    x = 1\n")
	assert.Empty(t, filterKind(diags, UnusedVariable))
}

func TestNestedScopeUseCounts(t *testing.T) {
	source := "def f():\n    x = 1\n    def g():\n        return x\n    return g\n"
	diags := analyze(t, source)
	assert.Empty(t, filterKind(diags, UnusedVariable))
}

func TestNestedFunctionAssignmentBelongsToInnerScope(t *testing.T) {
	source := "def f():\n    def g():\n        y = 1\n    return g\n"
	diags := analyze(t, source)
	unused := filterKind(diags, UnusedVariable)
	require.Len(t, unused, 1)
	assert.Equal(t, "y", unused[0].Name)
	assert.Equal(t, 3, unused[0].Line)
}

func TestUnusedExceptBinding(t *testing.T) {
	source := "try:\n    pass\nexcept ValueError as err:\n    pass\n"
	diags := analyze(t, source)
	unused := filterKind(diags, UnusedVariable)
	require.Len(t, unused, 1)
	assert.Equal(t, "err", unused[0].Name)
	assert.Equal(t, 3, unused[0].Line)
}

func TestUsedExceptBindingNotReported(t *testing.T) {
	source := "try:\n    pass\nexcept ValueError as err:\n    print(err)\n"
	diags := analyze(t, source)
	assert.Empty(t, filterKind(diags, UnusedVariable))
}

func TestDuplicateKeys(t *testing.T) {
	source := "d = {\n    'a': 1,\n    'b': 2,\n    'a': 3,\n}\n"
	diags := analyze(t, source)
	dups := filterKind(diags, DuplicateKey)
	require.Len(t, dups, 2)
	assert.Equal(t, 2, dups[0].Line)
	assert.Equal(t, 4, dups[1].Line)
	assert.Equal(t, dups[0].Name, dups[1].Name)
}

func TestDuplicateKeysEquivalentSpellings(t *testing.T) {
	// 1 and 1.0 hash equal, 'a' and "a" are the same string.
	diags := analyze(t, "d = {1: 'x', 1.0: 'y'}\n")
	assert.Len(t, filterKind(diags, DuplicateKey), 2)

	diags = analyze(t, "d = {'a': 1, \"a\": 2}\n")
	assert.Len(t, filterKind(diags, DuplicateKey), 2)
}

func TestDuplicateKeysSameValueIgnored(t *testing.T) {
	diags := analyze(t, "d = {'a': 1, 'a': 1}\n")
	assert.Empty(t, filterKind(diags, DuplicateKey))
}

func TestDuplicateKeysNonLiteralIgnored(t *testing.T) {
	diags := analyze(t, "d = {f(): 1, f(): 2}\n")
	assert.Empty(t, filterKind(diags, DuplicateKey))
}

func TestNestedDictionariesIndependent(t *testing.T) {
	diags := analyze(t, "d = {'a': {'a': 1}, 'b': {'a': 2}}\n")
	assert.Empty(t, filterKind(diags, DuplicateKey))
}

func TestStarImport(t *testing.T) {
	source := "from math import *\nprint(sqrt(4))\n"
	diags := analyze(t, source)
	stars := filterKind(diags, StarImport)
	require.Len(t, stars, 1)
	assert.Equal(t, "math", stars[0].Module)
	assert.Equal(t, 1, stars[0].Line)

	usage := filterKind(diags, StarImportUsage)
	require.Len(t, usage, 1)
	assert.Equal(t, "sqrt", usage[0].Name)
}

func TestStarImportBuiltinsNotUndefined(t *testing.T) {
	diags := analyze(t, "from math import *\nprint(len('x'))\n")
	assert.Empty(t, filterKind(diags, StarImportUsage))
}

func TestStarImportUsageSorted(t *testing.T) {
	source := "from math import *\ntau(sqrt(pi))\n"
	diags := analyze(t, source)
	usage := filterKind(diags, StarImportUsage)
	require.Len(t, usage, 3)
	assert.Equal(t, "pi", usage[0].Name)
	assert.Equal(t, "sqrt", usage[1].Name)
	assert.Equal(t, "tau", usage[2].Name)
}

func TestSyntaxErrorYieldsNothing(t *testing.T) {
	assert.Empty(t, analyze(t, "import os\ndef f(:\n"))
}

func TestEmptySource(t *testing.T) {
	assert.Empty(t, analyze(t, ""))
}
