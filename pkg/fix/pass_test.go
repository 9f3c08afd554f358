package fix

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterUselessPassTopLevel(t *testing.T) {
	assert.Equal(t, "", FilterUselessPass("pass\n", false, false))
}

func TestFilterUselessPassSoleBlockStatementKept(t *testing.T) {
	source := "if True:\n    pass\n"
	assert.Equal(t, source, FilterUselessPass(source, false, false))
}

func TestFilterUselessPassAfterEscapedNewlineKept(t *testing.T) {
	source := "if True:\\\n    pass\n"
	assert.Equal(t, source, FilterUselessPass(source, false, false))
}

func TestFilterUselessPassTrailing(t *testing.T) {
	assert.Equal(t, `if True:
    pass
else:
    True
    x = 1
`,
		FilterUselessPass(`if True:
    pass
else:
    True
    x = 1
    pass
`, false, false))
}

func TestFilterUselessPassLeadingRun(t *testing.T) {
	assert.Equal(t, `if True:
    pass
else:
    True
    x = 1
`,
		FilterUselessPass(`if True:
    pass
    pass
    pass
    pass
else:
    True
    x = 1
    pass
    pass
    pass
`, false, false))
}

func TestFilterUselessPassWithTry(t *testing.T) {
	assert.Equal(t, `import os
os.foo()
try:
    pass
except ImportError:
    pass
`,
		FilterUselessPass(`import os
os.foo()
try:
    pass
    pass
except ImportError:
    pass
`, false, false))
}

func TestFilterUselessPassMoreComplex(t *testing.T) {
	assert.Equal(t, `if True:
    pass
else:
    def foo():
        pass
        # abc
    def bar():
        # abc
        pass
    def blah():
        123
        pass  # Nope.
    True
    x = 1
`,
		FilterUselessPass(`if True:
    pass
else:
    def foo():
        pass
        # abc
    def bar():
        # abc
        pass
    def blah():
        123
        pass
        pass  # Nope.
        pass
    True
    x = 1
    pass
`, false, false))
}

func TestFilterUselessPassAfterDocstring(t *testing.T) {
	source := `    @abc.abstractmethod
    def some_abstract_method():
        """Some docstring."""
        pass
    `
	removed := `    @abc.abstractmethod
    def some_abstract_method():
        """Some docstring."""
    `
	assert.Equal(t, removed, FilterUselessPass(source, false, false))
	assert.Equal(t, source, FilterUselessPass(source, false, true))
}

func TestFilterUselessPassIgnorePassStatements(t *testing.T) {
	source := `    if True:
        pass
        pass
    else:
        pass
        True
        x = 1
        pass
    `
	assert.Equal(t, source, FilterUselessPass(source, true, false))
}

func TestFilterUselessPassWithSyntaxError(t *testing.T) {
	source := `if True:
if True:
            if True:
    if True:

if True:
    pass
else:
    True
    pass
    pass
    x = 1
`
	assert.Equal(t, source, FilterUselessPass(source, false, false))
}
