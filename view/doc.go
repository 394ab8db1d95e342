/*
Package view finds, compiles and renders templates.

# Lookup

Templates live in one or more view paths, each an [io/fs.FS], searched first to last.
A template is named by a logical name, the prefixes it may live under, and the formats acceptable:

	posts/show.html.tmpl  <- Find("show", []string{"posts"}, false, []string{"html"})
	posts/_post.json.tmpl <- Find("post", []string{"posts"}, true, []string{"json"})
	posts/index.tmpl      <- Find("posts/index", nil, false, []string{"csv"})

The file extension selects the [Engine] compiling the template.
The segment before it, when present, is the template's format;
a template without one renders in whichever format was asked for.

# Rendering

A [Renderer] executes a template, file, inline source or partial against a [Scope].
Templates may call these request-bound functions:

	yield                      the body a layout wraps
	partial name [key val ...] renders a partial with the given locals
	currentUser                the user of the request, if any

Partials rendered over a collection receive each item under the partial's name,
or the name set by [Options.As], alongside a "<name>_counter" local holding its index.
*/
package view
