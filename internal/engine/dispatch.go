package engine

import (
	"github.com/bamsammich/fileops/internal/platform"
)

// primitiveTable is indexed by [kind][transacted].
var primitiveTable = [2][2]platform.Primitive{
	kindCopy: {platform.CopyFileEx, platform.CopyFileTransacted},
	kindMove: {platform.MoveFileWithProgress, platform.MoveFileTransacted},
}

func selectPrimitive(kind opKind, transacted bool) platform.Primitive {
	col := 0
	if transacted {
		col = 1
	}
	return primitiveTable[kind][col]
}

func (e *Engine) transacted(req *Request) bool {
	return req.Transaction != nil && e.caps.Transactions
}

// invoke runs one attempt of the native primitive for req. adapter may be nil.
func (e *Engine) invoke(req *Request, src, dst string, adapter *progressAdapter) error {
	transacted := e.transacted(req)
	call := platform.Call{
		Src:       src,
		Dst:       dst,
		Primitive: selectPrimitive(req.kind(), transacted),
		Flags:     req.nativeFlags(),
	}
	if transacted {
		call.Transaction = req.Transaction.Handle()
	}
	if adapter != nil {
		call.Progress = adapter.routine
	}
	e.log.Debug("native call",
		"primitive", call.Primitive, "src", src, "dst", dst, "flags", call.Flags)
	return e.native.Invoke(call)
}
