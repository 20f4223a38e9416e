/*

Process of translation

Line Text ->
	lex ->
Tokens (lex) ->
	parse (precedence table from grammar) ->
Abstract Syntax Tree (ast) + trailing fragment ->
	gen ->
Starlark Source ->
	host compile ->
Starlark Function or REPL Chunk ->
	host exec ->
Value printed by the REPL

Text after ':' is never lexed as lambda syntax.
It's appended to the generated expression as is.

*/
package compiler
