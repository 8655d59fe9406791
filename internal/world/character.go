package world

// Character：角色；放置后 LocationID 指向所在地点
type Character struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	WorldID    int    `json:"world_id"`
	LocationID int    `json:"location_id"`
	AILevel    int    `json:"ai_level"`
}
