// relax_stub.go: no-op cpuRelax for builds without the cgo spin hints
//
// The consumer keeps spinning at full speed between monitor attempts.

//go:build !(amd64 || arm64) || !cgo || noasm

package ring

//go:nosplit
func cpuRelax() {}
