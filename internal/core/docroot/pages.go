package docroot

import (
	"html"
	"net/url"
	"strings"
)

const illegalPage = `<html>
<head>
<title>Illegal path, page not found.</title>
</head>
<body>
<h1>Illegal path, page not found.</h1>
<p>The server could not open the page you requested. This could be for one of a number of reasons, including:</p>
<ul>
<li>The page doesn't exist.</li>
<li>The path you requested was illegal, examples of illegal paths include those containing the .. path modifier.</li>
</ul>
<p>The path you requested was: <b>%PATH%</b></p>
</body>
</html>
`

const shutdownPage = `<html>
<head>
<title>Server stopped</title>
</head>
<body>
<h1>The server has been shut down.</h1>
<p>You can close this window.</p>
</body>
</html>
`

// IllegalPage renders the error page for urlPath.
func IllegalPage(urlPath string) []byte {
	return []byte(strings.Replace(illegalPage, "%PATH%", html.EscapeString(urlPath), 1))
}

type listingEntry struct {
	name  string
	isDir bool
}

func listingPage(entries []listingEntry) []byte {
	var b strings.Builder
	b.WriteString("<html>\n<head>\n<title>Directory Listing</title>\n</head>\n<body>\n<ul>\n")
	b.WriteString(`<li><a href="../">..</a></li>`)
	b.WriteString("\n")
	for _, e := range entries {
		href := (&url.URL{Path: e.name}).String()
		if e.isDir {
			href += "/"
		}
		b.WriteString(`<li><a href="`)
		b.WriteString(html.EscapeString(href))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(e.name))
		b.WriteString("</a></li>\n")
	}
	b.WriteString("</ul>\n</body>\n</html>\n")
	return []byte(b.String())
}
