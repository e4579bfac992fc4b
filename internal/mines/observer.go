package mines

// Observer receives game lifecycle notifications. Calls are synchronous and
// happen after the field has settled; implementations must not block.
type Observer interface {
	OnGameStart()
	OnWaitingInput()
	OnFieldChanged()
	OnBombStepped(row, col int)
	OnVictory()
}

// ObserverFuncs adapts plain functions to [Observer]. Nil fields are skipped.
type ObserverFuncs struct {
	GameStart    func()
	WaitingInput func()
	FieldChanged func()
	BombStepped  func(row, col int)
	Victory      func()
}

func (o ObserverFuncs) OnGameStart() {
	if o.GameStart != nil {
		o.GameStart()
	}
}

func (o ObserverFuncs) OnWaitingInput() {
	if o.WaitingInput != nil {
		o.WaitingInput()
	}
}

func (o ObserverFuncs) OnFieldChanged() {
	if o.FieldChanged != nil {
		o.FieldChanged()
	}
}

func (o ObserverFuncs) OnBombStepped(row, col int) {
	if o.BombStepped != nil {
		o.BombStepped(row, col)
	}
}

func (o ObserverFuncs) OnVictory() {
	if o.Victory != nil {
		o.Victory()
	}
}
