package spec

import "strings"

// KnownPrefixes are the namespace prefixes used by the documentation, most
// specific first.
var KnownPrefixes = []string{
    "Payment_Models_Data_",
    "Payment_Models_",
    "Payment_v1_",
    "Common_",
}

// ShortName canonicalizes a documentation identifier into a schema key. At most
// one known prefix is stripped, then every underscore is removed. Applying it to
// its own output is a no-op.
func ShortName(raw string) string {
    for _, prefix := range KnownPrefixes {
        if strings.HasPrefix(raw, prefix) {
            raw = raw[len(prefix):]
            break
        }
    }
    return strings.ReplaceAll(raw, "_", "")
}
