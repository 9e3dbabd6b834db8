package evaluator

import (
	"math"

	"github.com/texpr-go/texpr/internal/domain/texerr"
)

func vectorAddSub(a, b Vector, sign float64) (Vector, error) {
	if len(a.Components) != len(b.Components) {
		return Vector{}, texerr.NewEvaluation(texerr.DimensionMismatch, "vectors must have the same dimension")
	}
	out := make([]float64, len(a.Components))
	for i := range out {
		out[i] = a.Components[i] + sign*b.Components[i]
	}
	return Vector{Components: out}, nil
}

func vectorScale(v Vector, s float64) Vector {
	out := make([]float64, len(v.Components))
	for i, c := range v.Components {
		out[i] = c * s
	}
	return Vector{Components: out}
}

func dotProduct(a, b Vector) (Numeric, error) {
	if len(a.Components) != len(b.Components) {
		return 0, texerr.NewEvaluation(texerr.DimensionMismatch, "dot product requires vectors of the same dimension")
	}
	var sum float64
	for i := range a.Components {
		sum += a.Components[i] * b.Components[i]
	}
	return Numeric(sum), nil
}

func crossProduct(a, b Vector) (Vector, error) {
	if len(a.Components) != 3 || len(b.Components) != 3 {
		return Vector{}, texerr.NewEvaluation(texerr.DimensionMismatch, "cross product is only defined for 3-vectors")
	}
	ax, ay, az := a.Components[0], a.Components[1], a.Components[2]
	bx, by, bz := b.Components[0], b.Components[1], b.Components[2]
	return Vector{Components: []float64{
		ay*bz - az*by,
		az*bx - ax*bz,
		ax*by - ay*bx,
	}}, nil
}

func vectorMagnitude(v Vector) float64 {
	var sum float64
	for _, c := range v.Components {
		sum += c * c
	}
	return math.Sqrt(sum)
}

func unitVector(v Vector) (Vector, error) {
	mag := vectorMagnitude(v)
	if mag == 0 {
		return Vector{}, texerr.NewEvaluation(texerr.DomainError, "cannot normalize the zero vector")
	}
	return vectorScale(v, 1/mag), nil
}

func matrixAddSub(a, b Matrix, sign float64) (Matrix, error) {
	ar, ac := a.dims()
	br, bc := b.dims()
	if ar != br || ac != bc {
		return Matrix{}, texerr.NewEvaluation(texerr.DimensionMismatch, "matrices must have the same shape")
	}
	out := make([][]float64, ar)
	for i := range out {
		out[i] = make([]float64, ac)
		for j := range out[i] {
			out[i][j] = a.Rows[i][j] + sign*b.Rows[i][j]
		}
	}
	return Matrix{Rows: out}, nil
}

func matrixScale(m Matrix, s float64) Matrix {
	rows, cols := m.dims()
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
		for j := range out[i] {
			out[i][j] = m.Rows[i][j] * s
		}
	}
	return Matrix{Rows: out}
}

func matrixMul(a, b Matrix) (Matrix, error) {
	ar, ac := a.dims()
	br, bc := b.dims()
	if ac != br {
		return Matrix{}, texerr.NewEvaluation(texerr.DimensionMismatch, "matrix multiplication requires inner dimensions to match")
	}
	out := make([][]float64, ar)
	for i := 0; i < ar; i++ {
		out[i] = make([]float64, bc)
		for j := 0; j < bc; j++ {
			var sum float64
			for k := 0; k < ac; k++ {
				sum += a.Rows[i][k] * b.Rows[k][j]
			}
			out[i][j] = sum
		}
	}
	return Matrix{Rows: out}, nil
}

func matrixTranspose(m Matrix) Matrix {
	rows, cols := m.dims()
	out := make([][]float64, cols)
	for j := 0; j < cols; j++ {
		out[j] = make([]float64, rows)
		for i := 0; i < rows; i++ {
			out[j][i] = m.Rows[i][j]
		}
	}
	return Matrix{Rows: out}
}

func matrixTrace(m Matrix) (float64, error) {
	rows, cols := m.dims()
	if rows != cols {
		return 0, texerr.NewEvaluation(texerr.DimensionMismatch, "trace requires a square matrix")
	}
	var sum float64
	for i := 0; i < rows; i++ {
		sum += m.Rows[i][i]
	}
	return sum, nil
}

// matrixDeterminant uses Gaussian elimination with partial pivoting,
// tracking the sign flips row swaps introduce.
func matrixDeterminant(m Matrix) (float64, error) {
	rows, cols := m.dims()
	if rows != cols {
		return 0, texerr.NewEvaluation(texerr.DimensionMismatch, "determinant requires a square matrix")
	}
	a := cloneRows(m.Rows)
	n := rows
	det := 1.0
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if a[pivot][col] == 0 {
			return 0, nil
		}
		if pivot != col {
			a[pivot], a[col] = a[col], a[pivot]
			det = -det
		}
		det *= a[col][col]
		for row := col + 1; row < n; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k < n; k++ {
				a[row][k] -= factor * a[col][k]
			}
		}
	}
	return det, nil
}

// matrixInverse solves for the inverse via Gauss-Jordan elimination on the
// matrix augmented with the identity (spec.md §4.3 "inverse (Gauss-Jordan)").
func matrixInverse(m Matrix) (Matrix, error) {
	rows, cols := m.dims()
	if rows != cols {
		return Matrix{}, texerr.NewEvaluation(texerr.DimensionMismatch, "inverse requires a square matrix")
	}
	n := rows
	aug := make([][]float64, n)
	for i := 0; i < n; i++ {
		aug[i] = make([]float64, 2*n)
		copy(aug[i], m.Rows[i])
		aug[i][n+i] = 1
	}
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(aug[row][col]) > math.Abs(aug[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(aug[pivot][col]) < 1e-12 {
			return Matrix{}, texerr.NewEvaluation(texerr.DomainError, "matrix is singular, no inverse exists")
		}
		aug[pivot], aug[col] = aug[col], aug[pivot]
		pv := aug[col][col]
		for k := 0; k < 2*n; k++ {
			aug[col][k] /= pv
		}
		for row := 0; row < n; row++ {
			if row == col {
				continue
			}
			factor := aug[row][col]
			for k := 0; k < 2*n; k++ {
				aug[row][k] -= factor * aug[col][k]
			}
		}
	}
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = make([]float64, n)
		copy(out[i], aug[i][n:])
	}
	return Matrix{Rows: out}, nil
}

// matrixPower implements '^' where the base is a Matrix and the exponent is
// numeric: -1 inverts, a non-negative integer repeats multiplication. The
// "exponent is literally T" transpose case is handled by the caller before
// the exponent is ever evaluated as an expression (spec.md §4.3) — see
// VisitBinaryOp, since a bare "T" would otherwise just be an unbound
// variable lookup.
func matrixPower(m Matrix, exponent Result) (Result, error) {
	n, err := AsNumeric(exponent)
	if err != nil {
		return nil, err
	}
	if n == -1 {
		return matrixInverse(m)
	}
	if n != math.Trunc(n) || n < 0 {
		return nil, texerr.NewEvaluation(texerr.DomainError, "matrix power requires a non-negative integer, -1, or T")
	}
	rows, cols := m.dims()
	if rows != cols {
		return nil, texerr.NewEvaluation(texerr.DimensionMismatch, "matrix power requires a square matrix")
	}
	result := identity(rows)
	for i := 0; i < int(n); i++ {
		result, err = matrixMul(result, m)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func identity(n int) Matrix {
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
		rows[i][i] = 1
	}
	return Matrix{Rows: rows}
}

func cloneRows(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = append([]float64(nil), r...)
	}
	return out
}
