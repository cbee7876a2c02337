package service

// changeBranch: исход смены главной роли.
type changeBranch string

const (
	// базовый аккаунт, роль такого типа уже есть: удаляем её и главную, создаём новую главную
	branchDestroyBoth changeBranch = "destroy_both"
	// премиум, роль уже есть: только перевешиваем флаг
	branchPromote changeBranch = "promote"
	// премиум, роли нет: старая главная остаётся как неглавная, новая становится главной
	branchAppendMain changeBranch = "append_main"
	// базовый аккаунт, роли нет: главная удаляется, новая становится единственной
	branchReplaceMain changeBranch = "replace_main"
)

func planChange(hasExisting, premium bool) changeBranch {
	switch {
	case hasExisting && premium:
		return branchPromote
	case hasExisting:
		return branchDestroyBoth
	case premium:
		return branchAppendMain
	default:
		return branchReplaceMain
	}
}

// destructive: ветка оставляет у аккаунта ровно одну роль.
func (b changeBranch) destructive() bool {
	return b == branchDestroyBoth || b == branchReplaceMain
}
