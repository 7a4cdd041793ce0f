package tensor

// Cat concatenates tensors along dim. All shapes must agree except on dim.
// Negative dims count from the end.
//
// Example:
//
//	ctx := tensor.Zeros[float32](Shape{2, 1, 8}, backend)
//	query := tensor.Zeros[float32](Shape{2, 1, 8}, backend)
//	both := tensor.Cat([]*Tensor[float32, B]{ctx, query}, -1) // Shape: [2, 1, 16]
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}
	backend := tensors[0].backend
	raws := make([]*RawTensor, len(tensors))
	for i, t := range tensors {
		raws[i] = t.raw
	}
	return New[T](backend.Cat(raws, dim), backend)
}

// Stack joins same-shaped tensors along a new dimension inserted at dim.
func Stack[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	if len(tensors) == 0 {
		panic("stack: at least one tensor required")
	}
	expanded := make([]*Tensor[T, B], len(tensors))
	for i, t := range tensors {
		expanded[i] = t.Unsqueeze(dim)
	}
	return Cat(expanded, dim)
}
