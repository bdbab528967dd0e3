package main

import ("fmt"; "math"; "path/filepath"; "strconv"; "strings")

// RoundedSqrt parses a textual numeric input and returns its square root
// rounded to 2 decimal places. Malformed or negative input comes back as an
// error so the template engine can report it for the broken page.
func RoundedSqrt(text string) (string, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {return "", fmt.Errorf("RoundedSqrt: %q is not a number", text)}
	if v < 0 {return "", fmt.Errorf("RoundedSqrt: negative input %v", v)}
	r := math.Round(math.Sqrt(v)*100) / 100
	return strconv.FormatFloat(r, 'f', -1, 64), nil
}

// SafeJoin joins relPath under root, treating relPath as rooted at root.
// Returns an empty string when the result would escape root.
func SafeJoin(root, relPath string) string {
	p := filepath.Join(root, filepath.Join("/", relPath))
	if p != root && !strings.HasPrefix(p, root+string(filepath.Separator)) {return ""}
	return p
}

// Is the page in the served category? Private pages are only served when
// ONLY_PUBLIC is "no".
func isServed(publicField bool)bool{return onlyPublic=="no" || publicField}

func ToStrArr(obj any) []string {
	if obj == nil {return []string{}}
	switch v := obj.(type) {
	case []string: return v
	case []any: out := make([]string,0,len(v)); for _, x := range v {out = append(out, fmt.Sprint(x))}; return out
	default: return []string{fmt.Sprint(v)}}
}
