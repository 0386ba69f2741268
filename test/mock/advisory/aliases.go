package mock_advisory

import (
	advisory "github.com/quay/sbomkit/advisory"
)

type (
	Source = advisory.Source
)
