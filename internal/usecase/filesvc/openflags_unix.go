//go:build unix

package filesvc

import "syscall"

// noFollow запрещает open переходить по симлинку в последней компоненте пути.
const noFollow = syscall.O_NOFOLLOW
