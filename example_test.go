package jetpeg_test

import (
	"fmt"

	"github.com/ava12/jetpeg/langdef"
	"github.com/ava12/jetpeg/output"
	"github.com/ava12/jetpeg/parser"
)

func Example() {
	input := `
foo = hello
bar = world
[sec]
baz =
[sec.subsec]
qux = !
`
	grammar := `
rule config nl* entries:entry* end
rule entry ('[' section:[a-z.]+ ']' / name:[a-z]+ s '=' s value:[^\n]*) s nl+ end
rule s [ \t]* end
rule nl '\n' end
`
	configGrammar, e := langdef.ParseString("example grammar", grammar)
	if e != nil {
		fmt.Println(e)
		return
	}

	configParser, e := parser.New(configGrammar)
	if e != nil {
		panic(e)
	}

	v, e := configParser.Match("config", input)
	if e != nil {
		fmt.Println(e)
		return
	}

	result := make(map[string]string)
	prefix := ""
	for _, entry := range output.Simplify(v).(output.Record)["entries"].([]any) {
		fields := entry.(output.Record)
		if section, ok := fields["section"].(string); ok {
			prefix = section + "."
		} else {
			result[prefix+fields["name"].(string)] = fields["value"].(string)
		}
	}
	fmt.Println(result)
	// Output: map[bar:world foo:hello sec.baz: sec.subsec.qux:!]
}
