// Package entries 维护应用入口目录：入口由代码在 init() 中注册组件、reducer 与路由工厂，
// 再由配置文件决定挂载路径、显示名称与数据客户端覆盖项。
//
// 入口作者需要：
//  1. 在 internal/entries/<key>/ 下实现入口组件与路由表；
//  2. 在 init() 中调用 entries.MustRegister 注册 Definition；
//  3. 在 main 中以空白导入的方式引入该包。
//
// 每次请求都会从 Catalog.Resolve 得到一份新的 AppConfig，调用方可以自由修改它。
package entries
