//go:build !nogpu

package gpu

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/wgsl"
)

//go:embed shaders/ssao.wgsl
var ssaoShaderSource string

// ssaoEntryPoint is the compute entry point of ssao.wgsl.
const ssaoEntryPoint = "main"

// ShaderSource returns the WGSL source of the SSAO kernel.
func ShaderSource() string {
	return ssaoShaderSource
}

// CompileShaderToSPIRV compiles WGSL source to SPIR-V words.
func CompileShaderToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("SPIR-V length %d is not a multiple of 4", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return spirvCode, nil
}

// ParseShader runs the WGSL front end (lex, parse, lower) and returns the IR
// module. It reports source errors without needing a device.
func ParseShader(source string) (*ir.Module, error) {
	tokens, err := wgsl.NewLexer(source).Tokenize()
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	ast, err := wgsl.NewParser(tokens).Parse()
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	module, err := wgsl.Lower(ast)
	if err != nil {
		return nil, fmt.Errorf("lower: %w", err)
	}
	return module, nil
}

// checkEntryPoint verifies that module has a compute entry point named name.
func checkEntryPoint(module *ir.Module, name string) error {
	for i := range module.EntryPoints {
		ep := &module.EntryPoints[i]
		if ep.Name != name {
			continue
		}
		if ep.Stage != ir.StageCompute {
			return fmt.Errorf("entry point %q is not a compute shader", name)
		}
		return nil
	}
	return errors.New("entry point " + name + " not found")
}
