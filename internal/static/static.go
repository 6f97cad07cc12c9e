package static

import _ "embed"

// IndexHTML contains the embedded landing page served at /.
//
//go:embed index.html
var IndexHTML string

// FeaturesJSON contains the feature list shown in the extension popup.
//
//go:embed features.json
var FeaturesJSON []byte
