//go:build !nogpu

package main

import _ "github.com/gogpu/ssao/gpu" // enables GPU acceleration
