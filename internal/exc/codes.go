package exc

const (
	CodeUnknownFatal                  = "S0000"
	CodeFileNotFound                  = "S0001"
	CodeUnsuportedFileSystemOperation = "S0002"
	CodePermissionDenied              = "S0003"
	CodeUnsupportedFileFormat         = "S0004"
	CodeUnexpectedEOF                 = "S0005"
	CodeLexError                      = "S0006"
	CodeParseError                    = "S0007"
	CodeInvalidNumber                 = "S0008"
	CodeConfigError                   = "S0009"
)

const (
	CodeEOF = "_EOF_"
)

var (
	defaultNonFatal = map[string]bool{}

	// lexCodes and parseCodes group codes into the two front end error
	// kinds.
	lexCodes = map[string]bool{
		CodeLexError: true,
	}
	parseCodes = map[string]bool{
		CodeParseError:    true,
		CodeUnexpectedEOF: true,
		CodeInvalidNumber: true,
	}
)
