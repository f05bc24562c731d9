package classfile

// Emitter produces the bytes of one class file. Implementations are
// single-use: a second call to Emit fails.
type Emitter interface {
	Emit() ([]byte, error)
}
