package template

import (
	"net/url"
	"strings"
)

// ExpandURL expands template variables in a URL template, percent-encoding
// each substituted value according to where it lands: values in the query
// component are query-escaped (so "$fdry" becomes "%24fdry"), values in the
// path component are path-escaped. Literal text in the template is left
// untouched.
func (e *Engine) ExpandURL(urlTemplate string, params map[string]interface{}) (string, error) {
	pathPart, queryPart, hasQuery := strings.Cut(urlTemplate, "?")

	expandedPath, err := e.ReplaceString(pathPart, params, url.PathEscape)
	if err != nil {
		return "", err
	}
	if !hasQuery {
		return expandedPath, nil
	}

	expandedQuery, err := e.ReplaceString(queryPart, params, url.QueryEscape)
	if err != nil {
		return "", err
	}
	return expandedPath + "?" + expandedQuery, nil
}
