/*
Package langdef converts textual grammar description to grammar.Grammar structure.

Grammar is described as a sequence of rule blocks. Self-definition of this language is:
*/
//  $space = /\s+/; $comment = /#[^\n]*/;
//  $string = /(?:'(?:[^'\\]|\\.)*'|"(?:[^"\\]|\\.)*")i?/;
//  $class = /\[(?:[^\]\\]|\\.)*\]/;
//  $label = /[a-zA-Z_][a-zA-Z_0-9]*:/; $at-label = /@:/;
//  $local-label = /%[a-zA-Z_][a-zA-Z_0-9]*:/; $local = /%[a-zA-Z_][a-zA-Z_0-9]*/;
//  $call = /[a-zA-Z_][a-zA-Z_0-9]*\[/;
//  $name = /[a-zA-Z_][a-zA-Z_0-9]*(?:\.[a-zA-Z_][a-zA-Z_0-9]*)*/;
//  $function = /\$[a-zA-Z_]+\[?/;
//  $op = /\*->|\*\[|\+\[|[*+?\/&!(){}<>\],:.]/;
//
//  grammar = {rule};
//  rule = 'rule', ($name | $call, $local, {',', $local}, ']'), choice, 'end';
//  choice = ['/'], sequence, {'/', sequence};
//  sequence = {item}, [creator];
//  item = ['&' | '!'], [$label | $at-label | $local-label | ':'], primary, {suffix};
//  suffix = '?' | '*' | '+' | ('*[' | '+['), choice, ']' | '*->', primary;
//  primary = $string | $class | '.' | '(', [choice], ')' | $name | $call, choice, {',', choice}, ']' |
//            $local | function;
//  function = '$true' | '$false' | '$error[', $string, ']' | '$match[', ($local | $string), ']' |
//             ('$enter_mode[' | '$leave_mode['), $string, ',', choice, ']' | '$in_mode[', $string, ']';
//  creator = '<', $name, [data], '>' | '{', code, '}';
//  data = $string | '$true' | '$false' | '@'name | '{', [$label, data, {',', $label, data}], '}' |
//         '[', [data, {',', data}], ']' | '<', $name, [data], '>';
/*
Description must be a valid UTF-8 text. Line breaks are insignificant.
Description may contain line comments starting with # and ending with line feed.

String literal is any sequence of bytes delimited with either single (') or double (") quote signs.
Escape sequences \\ \' \" \n \r \t \0 \xHH \uHHHH \UHHHHHHHH are recognized in both forms.
A string immediately followed by i matches ASCII letters case-insensitively, e.g. 'select'i.

Character class is a sequence of characters and ranges in square brackets, e.g. [a-zA-Z_].
A class starting with ^ is inverted. Classes are byte-oriented, use \xHH for arbitrary bytes
and \] \- \^ \\ for literal brackets, dashes, carets, and backslashes.

Rule names are case-sensitive identifiers, "rule" and "end" are reserved.
A rule with parameters is declared as rule name[%a, %b] and called as name[arg1, arg2],
there must be no space between a name and a bracket.
Order of rules does not matter, rules may call rules that are defined later.

Labels:
   name:expr  stores the value of expr (or the matched range if expr has no value) as field "name";
   @:expr     makes the value of expr the value of the whole sequence;
   %name:expr stores the value as a local value readable with %name later in the same sequence;
   :name      is a shorthand for name:name when applied to a rule call.

Suffixes: e? matches optionally, e* and e+ repeat, e*[glue] and e+[glue] repeat with glue between items,
e*->t repeats e until t matches.

A sequence may end with an object creator <ClassName data> or a value creator { code }.
Object data may refer to fields of the sequence value as @field.
Code of a value creator is not interpreted by this package, it may contain balanced curly braces
and quoted strings.
*/
package langdef
