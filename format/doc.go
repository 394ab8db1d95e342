/*
Package format maps media types to the short format symbols templates are named by
and negotiates which of them a request accepts.

A request names its format in one of three ways, checked in this order:
  - a "format" query parameter, e.g., /posts?format=json
  - a path extension, e.g., /posts/1.json
  - the Accept header

Formats returns the symbols in the order the request prefers them.
Negotiate picks one of the Types a handler offers.
*/
package format
