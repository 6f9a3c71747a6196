package sharesight

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// curlCommand renders a request as a copyable curl command line for
// debugging against the live API.
func curlCommand(method, reqURL string, headers http.Header, body []byte) string {
	var b strings.Builder
	fmt.Fprintf(&b, "curl -X %s %s", method, shellQuote(reqURL))

	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, value := range headers[name] {
			fmt.Fprintf(&b, " -H %s", shellQuote(name+": "+value))
		}
	}

	if len(body) > 0 {
		fmt.Fprintf(&b, " -d %s", shellQuote(string(body)))
	}

	return b.String()
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
