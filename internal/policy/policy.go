// Package policy содержит единое правило доступа к чужому контенту.
// Применяется одинаково к редактированию/удалению постов и удалению комментариев.
package policy

// CanMutate возвращает true, если актор владеет ресурсом или является админом.
// Никакого самоповышения прав: обычный пользователь не может трогать чужой контент.
func CanMutate(actorID, ownerID uint, actorIsAdmin bool) bool {
	return actorID == ownerID || actorIsAdmin
}
