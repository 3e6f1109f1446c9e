// Package console 实现逐行交互的命令会话：打印欢迎语，循环读取一行命令、
// 交给解释器并输出响应，遇到 exit 或输入结束时告别退出。
package console
