package dice

import (
	"fmt"

	"go.uber.org/zap"
)

// Roller is the Dice Service: it draws from a Source and logs every roll at
// debug level with the expression, faces, modifier and total.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller over src. A nil logger is replaced with a
// no-op logger.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roller{src: src, logger: logger}
}

// Roll returns a single face in [1, sides].
//
// Precondition: sides >= 1.
func (r *Roller) Roll(sides int) int {
	if sides < 1 {
		panic(fmt.Sprintf("dice: Roll called with sides=%d", sides))
	}
	v := r.src.Intn(sides) + 1
	r.logger.Debug("dice roll", zap.String("expression", fmt.Sprintf("d%d", sides)), zap.Int("total", v))
	return v
}

// RollD20 returns a face in [1, 20].
func (r *Roller) RollD20() int {
	return r.Roll(20)
}

// RollDamageDice rolls count dice of the given sides. A count below one rolls
// nothing and yields an empty result.
func (r *Roller) RollDamageDice(count, sides int) RollResult {
	if count < 1 {
		return RollResult{Expression: fmt.Sprintf("0d%d", sides)}
	}
	return r.roll(Expression{Count: count, Sides: sides})
}

// RollExpr parses expr and rolls it.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.roll(e), nil
}

func (r *Roller) roll(e Expression) RollResult {
	res := Roll(e, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", res.Expression),
		zap.Ints("dice", res.Dice),
		zap.Int("modifier", res.Modifier),
		zap.Int("total", res.Total()),
	)
	return res
}
