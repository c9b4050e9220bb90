//go:build !unix

package filesvc

const noFollow = 0
