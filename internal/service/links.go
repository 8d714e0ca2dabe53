package service

import "fmt"

// 通知里带的前端跳转路径
func communityLink(id uint64) string { return fmt.Sprintf("/communities/%d", id) }
func groupLink(id uint64) string     { return fmt.Sprintf("/groups/%d", id) }
func postLink(id uint64) string      { return fmt.Sprintf("/posts/%d", id) }
